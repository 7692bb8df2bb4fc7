package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"testlens/cmd/testlens/ui"
	"testlens/internal/config"
	"testlens/internal/store"
	"testlens/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress across snapshots and the tracker",
	Long: `Summarizes where the workspace stands: the learner profile from the last
plan run, the latest analysis snapshots, what changed between the last two
runs, and the progress tracker totals.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}

	fmt.Println(ui.TitleStyle.Render("testlens status"))
	fmt.Println()

	printProfile(ws)
	if err := printSnapshotStatus(ws, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "snapshots unavailable: %v\n", err)
	}
	printTrackerStatus(ws, cfg)
	return nil
}

func printProfile(ws string) {
	p, err := config.LoadProfile(ws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profile unavailable: %v\n", err)
		return
	}
	if p == nil {
		fmt.Println(ui.MutedStyle.Render("no profile yet; run `testlens plan`"))
		fmt.Println()
		return
	}

	fmt.Println(ui.SectionStyle.Render("Profile"))
	fmt.Printf("  skill: %s   plan: %d day(s)   file: %s\n",
		p.Skill, p.PlanDays, filepath.Base(p.PlanFile))
	fmt.Printf("  updated: %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Println()
}

func printSnapshotStatus(ws string, cfg *config.Config) error {
	dbPath := cfg.Store.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(ws, dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println(ui.MutedStyle.Render("no snapshots yet; run `testlens analyze`"))
		fmt.Println()
		return nil
	}

	st, err := store.NewSnapshotStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := st.ListSnapshots(5)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println(ui.MutedStyle.Render("no snapshots yet; run `testlens analyze`"))
		fmt.Println()
		return nil
	}

	fmt.Println(ui.SectionStyle.Render("Recent snapshots"))
	rows := [][]string{{"When", "Classes", "Tested", "Tests", "Coverage"}}
	for _, s := range snaps {
		rows = append(rows, []string{
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(s.Classes),
			strconv.Itoa(s.TestedClasses),
			strconv.Itoa(s.TestMethods),
			ui.Percent(s.Coverage),
		})
	}
	fmt.Print(ui.Table(rows))
	fmt.Println()

	if len(snaps) >= 2 {
		// snaps is newest first.
		delta, err := st.Delta(snaps[1].ID, snaps[0].ID)
		if err == nil {
			printDelta(delta)
		}
	}
	return nil
}

func printDelta(delta *store.Delta) {
	fmt.Println(ui.SectionStyle.Render("Since previous snapshot"))

	gained := delta.TestsGained()
	switch {
	case gained > 0:
		fmt.Printf("  tests: %s\n", ui.SuccessStyle.Render(fmt.Sprintf("+%d", gained)))
	case gained < 0:
		fmt.Printf("  tests: %s\n", ui.DangerStyle.Render(strconv.Itoa(gained)))
	default:
		fmt.Println("  tests: unchanged")
	}
	fmt.Printf("  coverage: %+.1f points\n", delta.CoverageGained())

	for _, c := range delta.Changed {
		switch {
		case c.GainedTest:
			fmt.Printf("  %s %s now has tests\n", ui.SuccessStyle.Render("+"), c.Name)
		case c.LostTest:
			fmt.Printf("  %s %s lost its tests\n", ui.DangerStyle.Render("-"), c.Name)
		}
	}
	if len(delta.NewClasses) > 0 {
		fmt.Printf("  new classes: %d\n", len(delta.NewClasses))
	}
	fmt.Println()
}

func printTrackerStatus(ws string, cfg *config.Config) {
	path := cfg.Tracker.CSVPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws, path)
	}
	entries, err := tracker.New(path).Load()
	if err != nil || len(entries) == 0 {
		fmt.Println(ui.MutedStyle.Render("no tracker entries; run `testlens tracker init`"))
		return
	}

	s := tracker.Summarize(entries)
	fmt.Println(ui.SectionStyle.Render("Learning progress"))
	fmt.Printf("  days complete: %d/%d\n", s.DaysCompleted, s.DaysTotal)
	fmt.Printf("  tests written: %d\n", s.TotalTests)
	fmt.Printf("  last coverage: %s\n", ui.Percent(s.LastCoverage))
}
