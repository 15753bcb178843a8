package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskhub/internal/skill"
)

func newRunCmd() *cobra.Command {
	var (
		inputPath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "run <skill-type>",
		Short: "Execute a skill against a JSON input object",
		Long: `Execute one of the skills (incident, runbook, fcr, daily_summary, prioritizer).

The input is a JSON object read from --input (a file path, or "-" for stdin).
Without --input the skill runs on an empty object.

Examples:
  skillctl run runbook --input runbook.json
  echo '{"purpose":"Allow monitoring"}' | skillctl run fcr --input -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}

			env, err := skill.Execute(skill.Kind(strings.TrimSpace(args[0])), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(env)
			}
			_, err = fmt.Fprintln(out, env.Output)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", `JSON input file, "-" for stdin`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result envelope as JSON")
	return cmd
}

func readInput(stdin io.Reader, path string) (map[string]any, error) {
	var data []byte
	var err error
	switch path {
	case "":
		return map[string]any{}, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	input := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return input, nil
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	return input, nil
}
