package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskhub/internal/app"
	"taskhub/internal/config"
	"taskhub/internal/model"
	"taskhub/internal/skill"
	pkgconfig "taskhub/pkg/config"
)

const previewLines = 25

func newDemoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Create a runbook task, execute its skill and store the output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := opts.configEnv
			if env == "" {
				env = pkgconfig.GetConfigEnv()
			}
			dir := opts.configDir
			if dir == "" {
				dir = pkgconfig.GetEnv("CONFIG_DIR", "config")
			}
			cfg, err := config.LoadFrom(env, dir)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return runDemo(ctx, cmd.OutOrStdout(), cfg, opts)
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, cfg *config.Config, opts *options) error {
	p := demoPrinter{out: out}
	p.header("TASK HUB - DEMO")

	p.section("Step 1: Connecting Task Store")
	a, err := app.New(ctx, cfg, opts.logger(), "skillctl")
	if err != nil {
		return err
	}
	defer a.Close()
	p.ok(fmt.Sprintf("Store ready (driver: %s)", storeLabel(cfg)))

	p.section("Step 2: Creating Sample Task")
	description := "Production firewall showing elevated CPU usage"
	created, err := a.Tasks.Create(ctx, model.TaskCreate{
		Title:       "Troubleshoot Firewall High CPU",
		Description: &description,
		Status:      model.StatusInProgress,
		Priority:    model.PriorityHigh,
		SkillType:   skill.KindRunbook,
		InputPayload: map[string]any{
			"domain":           "firewall",
			"symptom_category": "high_cpu",
			"access_mode":      "gui_only",
			"environment":      "prod",
		},
	})
	if err != nil {
		return err
	}
	p.ok("Task created")
	p.printf("    ID: %s\n", created.ID)
	p.printf("    Title: %s\n", created.Title)
	p.printf("    Status: %s\n", created.Status)
	p.printf("    Priority: %s\n", created.Priority)
	p.printf("    Skill Type: %s\n", created.SkillType)

	p.section("Step 3: Executing RUNBOOK Skill")
	executed, err := a.Tasks.ExecuteSkill(ctx, created.ID)
	if err != nil {
		return err
	}
	output, _ := executed.OutputPayload["output"].(string)
	p.ok(fmt.Sprintf("Skill executed: %v", executed.OutputPayload["skill_type"]))
	p.printf("\n    OUTPUT PREVIEW:\n    %s\n", strings.Repeat("-", 36))
	p.preview(output)

	p.section("Step 4: Verifying Stored Output")
	stored, err := a.Tasks.Get(ctx, created.ID)
	if err != nil {
		return err
	}
	if stored.OutputPayload == nil {
		return fmt.Errorf("task %s has no stored output", created.ID)
	}
	p.ok(fmt.Sprintf("Output saved to task %s", created.ID))

	p.header("DEMO COMPLETE")
	return nil
}

func storeLabel(cfg *config.Config) string {
	if cfg.DB.Driver == "sqlite" {
		return "sqlite, " + cfg.DB.Path
	}
	return cfg.DB.Driver
}

type demoPrinter struct {
	out io.Writer
}

func (p demoPrinter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p demoPrinter) header(title string) {
	p.printf("\n%s\n  %s\n%s\n", strings.Repeat("=", 60), title, strings.Repeat("=", 60))
}

func (p demoPrinter) section(title string) {
	p.printf("\n>>> %s\n%s\n", title, strings.Repeat("-", 40))
}

func (p demoPrinter) ok(msg string) {
	p.printf("[OK] %s\n", msg)
}

func (p demoPrinter) preview(output string) {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if i == previewLines {
			p.printf("    ... (%d more lines)\n", len(lines)-previewLines)
			return
		}
		p.printf("    %s\n", line)
	}
}
