package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/analysis"
	"testlens/internal/config"
	"testlens/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze whenever source files change",
	Long: `Watches the workspace for changes to .cs, .csproj and .sln files and
re-runs the analysis once the changes settle. Useful in a second terminal
while working through the learning plan: write a test, save, and see the
coverage number move.

Stops on Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var prev *analysis.Report
	onChange := func(ctx context.Context, paths []string) {
		fmt.Printf("\n%s %d file(s) changed\n", ui.MutedStyle.Render("change detected:"), len(paths))
		report, err := analysis.NewAnalyzer(cfg).Run(ctx, ws)
		if err != nil {
			fmt.Fprintf(os.Stderr, "re-analysis failed: %v\n", err)
			return
		}
		fmt.Printf("  classes: %d   tested: %s   test methods: %d\n",
			len(report.Classes), ui.Percent(report.Coverage()), report.TestMethods)
		if prev != nil {
			printWatchDelta(prev, report)
		}
		prev = report
	}

	w, err := watch.NewWatcher(ws, cfg.Analyzer.ExcludeDirs, cfg.GetDebounce(), onChange)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("%s %s\n", ui.TitleStyle.Render("watching"), ws)
	fmt.Println(ui.MutedStyle.Render("press Ctrl-C to stop"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stats := w.Stats()
	fmt.Printf("\nstopped: %d created, %d modified, %d deleted, %d batch(es)\n",
		stats.FilesCreated, stats.FilesModified, stats.FilesDeleted, stats.Batches)
	return nil
}

// printWatchDelta reports class-level movement between two consecutive runs.
func printWatchDelta(prev, cur *analysis.Report) {
	hadTests := map[string]bool{}
	for _, c := range prev.Classes {
		hadTests[c.Ref] = c.HasTests
	}

	for _, c := range cur.Classes {
		was, existed := hadTests[c.Ref]
		switch {
		case existed && !was && c.HasTests:
			fmt.Printf("  %s %s now has tests\n", ui.SuccessStyle.Render("+"), c.Name)
		case existed && was && !c.HasTests:
			fmt.Printf("  %s %s lost its tests\n", ui.DangerStyle.Render("-"), c.Name)
		case !existed && !c.HasTests:
			fmt.Printf("  %s %s is new and untested\n", ui.WarningStyle.Render("!"), c.Name)
		}
	}

	if gained := cur.TestMethods - prev.TestMethods; gained != 0 {
		fmt.Printf("  test methods: %+d\n", gained)
	}
}
