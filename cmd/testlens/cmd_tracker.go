package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/config"
	"testlens/internal/tracker"
	"testlens/internal/world"
)

var (
	trackerInitDays int

	updateDay      int
	updateTests    int
	updateCoverage float64
	updateNotes    string
	updateDone     bool
	updateFromCov  bool
)

var trackerCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Track learning progress in a CSV file",
	Long: `Maintains a plain CSV progress log (Day, Completed, Tests Written,
Coverage %, Notes) that pairs with the learning plan. The file opens in any
spreadsheet; testlens only ever appends or updates rows by day.`,
}

var trackerInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the progress CSV with one row per plan day",
	RunE:  runTrackerInit,
}

var trackerUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Record progress for one day",
	Long: `Updates (or inserts) the row for --day. With --from-coverage the
coverage figure is read from the newest cobertura report in the workspace
instead of --coverage.`,
	RunE: runTrackerUpdate,
}

var trackerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the progress table",
	RunE:  runTrackerShow,
}

func init() {
	trackerInitCmd.Flags().IntVar(&trackerInitDays, "days", 0, "Rows to create (default: config default days)")

	trackerUpdateCmd.Flags().IntVar(&updateDay, "day", 0, "Plan day to update (required)")
	trackerUpdateCmd.Flags().IntVar(&updateTests, "tests", 0, "Tests written this day")
	trackerUpdateCmd.Flags().Float64Var(&updateCoverage, "coverage", 0, "Coverage percentage")
	trackerUpdateCmd.Flags().StringVar(&updateNotes, "notes", "", "Free-form notes")
	trackerUpdateCmd.Flags().BoolVar(&updateDone, "done", false, "Mark the day completed")
	trackerUpdateCmd.Flags().BoolVar(&updateFromCov, "from-coverage", false, "Read coverage from the newest cobertura report")
	trackerUpdateCmd.MarkFlagRequired("day")

	trackerCmd.AddCommand(trackerInitCmd)
	trackerCmd.AddCommand(trackerUpdateCmd)
	trackerCmd.AddCommand(trackerShowCmd)
}

// openTracker resolves the CSV path from config.
func openTracker(ws string) (*tracker.Tracker, *config.Config, error) {
	cfg, err := config.Load(ws)
	if err != nil {
		return nil, nil, err
	}
	path := cfg.Tracker.CSVPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws, path)
	}
	return tracker.New(path), cfg, nil
}

func runTrackerInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	tr, cfg, err := openTracker(ws)
	if err != nil {
		return err
	}

	days := trackerInitDays
	if days <= 0 {
		days = cfg.Plan.DefaultDays
	}
	if err := tr.Init(days); err != nil {
		return err
	}
	fmt.Printf("progress file ready: %s\n", tr.Path())
	return nil
}

func runTrackerUpdate(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	tr, cfg, err := openTracker(ws)
	if err != nil {
		return err
	}

	coverage := updateCoverage
	if updateFromCov {
		pct, ok := latestWorkspaceCoverage(ws, cfg)
		if !ok {
			return fmt.Errorf("no readable cobertura report found; run `dotnet test --collect:\"XPlat Code Coverage\"` first")
		}
		coverage = pct
		fmt.Printf("coverage from report: %.1f%%\n", pct)
	}

	entry := tracker.Entry{
		Day:          updateDay,
		Completed:    updateDone,
		TestsWritten: updateTests,
		Coverage:     coverage,
		Notes:        updateNotes,
	}
	if err := tr.Update(entry); err != nil {
		return err
	}
	fmt.Printf("day %d recorded\n", updateDay)
	return nil
}

func runTrackerShow(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	tr, _, err := openTracker(ws)
	if err != nil {
		return err
	}

	entries, err := tr.Load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no progress recorded yet; run `testlens tracker init`")
		return nil
	}

	rows := [][]string{{"Day", "Done", "Tests", "Coverage", "Notes"}}
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Day),
			ui.Check(e.Completed),
			strconv.Itoa(e.TestsWritten),
			ui.Percent(e.Coverage),
			e.Notes,
		})
	}
	fmt.Print(ui.Table(rows))

	s := tracker.Summarize(entries)
	fmt.Printf("\n%d/%d days complete, %d tests written, last coverage %s\n",
		s.DaysCompleted, s.DaysTotal, s.TotalTests, ui.Percent(s.LastCoverage))
	return nil
}

// latestWorkspaceCoverage scans for cobertura reports and parses the newest.
func latestWorkspaceCoverage(ws string, cfg *config.Config) (float64, bool) {
	scanner := world.NewScanner(cfg.Analyzer.ExcludeDirs, 0)
	scan, err := scanner.ScanWorkspace(ws)
	if err != nil {
		return 0, false
	}
	return tracker.LatestCoverage(scan.CoverageFiles)
}
