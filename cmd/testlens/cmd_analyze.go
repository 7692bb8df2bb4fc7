package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/analysis"
	"testlens/internal/config"
	"testlens/internal/store"
)

var analyzeNoSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan the workspace and report its testing posture",
	Long: `Walks the workspace, parses every C# source file, and reports which
classes have tests, their testability scores, and the testing stack in use.
Each run is saved as a snapshot so progress can be compared over time.

Analysis never modifies the workspace.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Skip saving a snapshot of this run")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	report, cfg, err := analyzeWorkspace(ws)
	if err != nil {
		return err
	}

	printReport(report, cfg)

	if !analyzeNoSave {
		if id, err := saveSnapshot(ws, cfg, report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: snapshot not saved: %v\n", err)
		} else {
			fmt.Printf("\n%s %s\n", ui.MutedStyle.Render("snapshot saved:"), id)
		}
	}
	return nil
}

// analyzeWorkspace runs the analyzer with the workspace config and the
// global timeout and signal handling.
func analyzeWorkspace(ws string) (*analysis.Report, *config.Config, error) {
	cfg, err := config.Load(ws)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	report, err := analysis.NewAnalyzer(cfg).Run(ctx, ws)
	if err != nil {
		return nil, nil, err
	}
	return report, cfg, nil
}

func saveSnapshot(ws string, cfg *config.Config, report *analysis.Report) (string, error) {
	dbPath := cfg.Store.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(ws, dbPath)
	}
	st, err := store.NewSnapshotStore(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.SaveSnapshot(report)
}

func printReport(report *analysis.Report, cfg *config.Config) {
	title := "Workspace Analysis"
	if report.Solution != "" {
		title = "Workspace Analysis: " + report.Solution
	}
	fmt.Println(ui.TitleStyle.Render(title))
	fmt.Println()

	fmt.Printf("  projects:      %d (%d test)\n", len(report.Projects), len(report.TestProjects))
	fmt.Printf("  source files:  %d\n", report.SourceFiles)
	fmt.Printf("  classes:       %d\n", len(report.Classes))
	fmt.Printf("  test methods:  %d\n", report.TestMethods)
	fmt.Printf("  coverage:      %s (classes with tests)\n", ui.Percent(report.Coverage()))
	if report.ParseErrors > 0 {
		fmt.Printf("  parse errors:  %s\n", ui.WarningStyle.Render(strconv.Itoa(report.ParseErrors)))
	}
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("Testing stack"))
	if report.Stack.TestFramework == "" {
		fmt.Println("  " + ui.DangerStyle.Render("no test framework detected"))
	} else {
		fmt.Printf("  framework: %s\n", report.Stack.TestFramework)
		fmt.Printf("  mocking: %s   fluent assertions: %s   autofixture: %s   coverlet: %s\n",
			ui.Check(report.Stack.HasMoq || report.Stack.HasNSubstitute),
			ui.Check(report.Stack.HasFluentAssertions),
			ui.Check(report.Stack.HasAutoFixture),
			ui.Check(report.Stack.HasCoverlet))
	}
	if !report.HasTestProject() {
		fmt.Println("  " + ui.WarningStyle.Render("no test project found; run `testlens scaffold`"))
	}
	fmt.Println()

	untested := report.Untested()
	if len(untested) == 0 {
		fmt.Println(ui.SuccessStyle.Render("Every public class has a matching test class."))
		return
	}

	fmt.Println(ui.SectionStyle.Render("Untested classes (worst first)"))
	rows := [][]string{{"Class", "Project", "Score", "Smells"}}
	shown := untested
	if len(shown) > 15 {
		shown = shown[:15]
	}
	for _, c := range shown {
		rows = append(rows, []string{
			c.Name,
			c.Project,
			ui.Score(c.Score),
			strings.Join(c.Smells, ", "),
		})
	}
	fmt.Print(ui.Table(rows))
	if len(untested) > len(shown) {
		fmt.Printf("%s\n", ui.MutedStyle.Render(fmt.Sprintf("  ... and %d more", len(untested)-len(shown))))
	}

	below := 0
	for _, c := range report.Classes {
		if c.Score < cfg.Analyzer.ScoreThreshold {
			below++
		}
	}
	if below > 0 {
		fmt.Printf("\n%d class(es) score below the %d threshold; the learning plan will target them.\n",
			below, cfg.Analyzer.ScoreThreshold)
	}
}
