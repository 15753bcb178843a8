package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskhub/internal/skill"
)

func newDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List runbook domains, their symptom categories and FCR change types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %s\n", "DOMAIN", "SYMPTOMS")
			fmt.Fprintln(out, strings.Repeat("-", 40))
			for _, d := range skill.Domains() {
				symptoms, _ := skill.SymptomsFor(d)
				fmt.Fprintf(out, "%-10s %s\n", d, strings.Join(symptoms, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "FCR change types: %s\n", strings.Join(skill.ChangeTypes(), ", "))
			return nil
		},
	}
}
