package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/config"
	"testlens/internal/logging"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize testlens state in the workspace",
	Long: `Creates the .testlens/ directory with a default config.yaml, the
snapshot database location, and the progress tracker path. Safe to run in a
workspace that already has state; use --force to rewrite the config with
defaults.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config with defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	configPath := filepath.Join(ws, config.Dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("%s already initialized (%s exists)\n", ui.MutedStyle.Render("testlens:"), configPath)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(ws); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(ws, config.Dir, "logs"), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	logging.Boot("initialized workspace %s", ws)

	fmt.Println(ui.TitleStyle.Render("testlens initialized"))
	fmt.Printf("  config:   %s\n", configPath)
	fmt.Printf("  tracker:  %s\n", filepath.Join(ws, cfg.Tracker.CSVPath))
	fmt.Printf("  database: %s\n", filepath.Join(ws, cfg.Store.DatabasePath))
	fmt.Println()

	// First analysis gives the workspace a baseline snapshot to diff against.
	report, cfg, err := analyzeWorkspace(ws)
	if err != nil {
		fmt.Printf("initial analysis skipped: %v\n", err)
		return nil
	}
	fmt.Printf("baseline: %d project(s), %d classes, %s tested\n",
		len(report.Projects), len(report.Classes), ui.Percent(report.Coverage()))
	if _, err := saveSnapshot(ws, cfg, report); err != nil {
		fmt.Printf("baseline snapshot not saved: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Next: run `testlens analyze` for the full report, or `testlens plan` to get started.")
	return nil
}
