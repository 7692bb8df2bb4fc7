package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/config"
	"testlens/internal/plan"
)

var (
	planDays     int
	planSkill    string
	planOutput   string
	planNoPrompt bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a customized learning plan",
	Long: `Analyzes the workspace and generates a day-by-day unit testing learning
plan built around the actual classes that need tests. Prompts for the number
of days and your skill level unless both are given as flags.

The plan is written as Markdown (LEARNING_PLAN.md by default) and rendered
to the terminal.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().IntVarP(&planDays, "days", "d", 0, "Plan length in days (1-30)")
	planCmd.Flags().StringVarP(&planSkill, "skill", "s", "", "Skill level: beginner, intermediate, advanced")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Output file (default from config)")
	planCmd.Flags().BoolVar(&planNoPrompt, "no-prompt", false, "Never prompt; use flags or config defaults")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	report, cfg, err := analyzeWorkspace(ws)
	if err != nil {
		return err
	}

	opts := plan.Options{Days: planDays, Skill: plan.Skill(planSkill)}
	if needsPrompt() {
		opts, err = plan.PromptOptions(plan.PromptConfig{
			Reader:       bufio.NewReader(os.Stdin),
			Writer:       os.Stdout,
			DefaultDays:  cfg.Plan.DefaultDays,
			DefaultSkill: plan.ParseSkill(cfg.Plan.DefaultSkill),
		})
		if err != nil {
			return err
		}
	} else {
		if opts.Days == 0 {
			opts.Days = cfg.Plan.DefaultDays
		}
		if opts.Skill == "" {
			opts.Skill = plan.ParseSkill(cfg.Plan.DefaultSkill)
		}
	}

	p := plan.Generate(report, opts)

	output := planOutput
	if output == "" {
		output = cfg.Plan.OutputFile
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(ws, output)
	}
	if err := p.WriteFile(output); err != nil {
		return err
	}

	profile := &config.Profile{
		Workspace: ws,
		Solution:  report.Solution,
		Skill:     string(p.Skill),
		PlanDays:  len(p.Days),
		PlanFile:  output,
		UpdatedAt: time.Now().UTC(),
	}
	if err := profile.Save(ws); err != nil {
		fmt.Fprintf(os.Stderr, "warning: profile not saved: %v\n", err)
	}

	markdown := p.Markdown()
	if rendered, err := renderMarkdown(markdown); err == nil {
		fmt.Print(rendered)
	} else {
		fmt.Print(markdown)
	}

	fmt.Printf("\n%s %s\n", ui.MutedStyle.Render("plan written to"), output)
	return nil
}

// needsPrompt reports whether interactive prompting should run. Both values
// present as flags, or --no-prompt, suppress it; a non-terminal stdin does
// not, because piped answers are a supported way to drive the prompts.
func needsPrompt() bool {
	if planNoPrompt {
		return false
	}
	return planDays == 0 || planSkill == ""
}

func renderMarkdown(markdown string) (string, error) {
	if ui.NoColor() {
		return markdown, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}
