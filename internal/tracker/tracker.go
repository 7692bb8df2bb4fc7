// Package tracker maintains the CSV progress log learners fill in as they
// work through a plan. The file is plain CSV so it opens in any spreadsheet.
package tracker

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"testlens/internal/logging"
)

// Entry is one day's progress row.
type Entry struct {
	Day          int
	Completed    bool
	TestsWritten int
	Coverage     float64
	Notes        string
}

// header is the fixed CSV column layout.
var header = []string{"Day", "Completed", "Tests Written", "Coverage %", "Notes"}

// Tracker reads and writes the progress CSV at a fixed path.
type Tracker struct {
	path string
}

// New creates a Tracker over the CSV at path. The file may not exist yet.
func New(path string) *Tracker {
	return &Tracker{path: path}
}

// Path returns the CSV location.
func (t *Tracker) Path() string { return t.path }

// Init creates the CSV with one blank row per plan day. An existing file is
// left untouched.
func (t *Tracker) Init(days int) error {
	if _, err := os.Stat(t.path); err == nil {
		logging.Tracker("progress file already exists: %s", t.path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("create tracker directory: %w", err)
	}

	entries := make([]Entry, 0, days)
	for day := 1; day <= days; day++ {
		entries = append(entries, Entry{Day: day})
	}
	if err := t.write(entries); err != nil {
		return err
	}
	logging.Tracker("initialized progress file with %d days: %s", days, t.path)
	return nil
}

// Load reads all entries, sorted by day. A missing file is an empty tracker.
func (t *Tracker) Load() ([]Entry, error) {
	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open progress file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var entries []Entry
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		entry, err := parseRow(rec)
		if err != nil {
			logging.Get(logging.CategoryTracker).Warn("skipping malformed row %d: %v", i+1, err)
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })
	return entries, nil
}

// Update upserts the entry for its day. Coverage is clamped to [0,100] and
// a negative test count is rejected.
func (t *Tracker) Update(entry Entry) error {
	if entry.Day < 1 {
		return fmt.Errorf("day must be positive, got %d", entry.Day)
	}
	if entry.TestsWritten < 0 {
		return fmt.Errorf("tests written cannot be negative, got %d", entry.TestsWritten)
	}
	entry.Coverage = clampPercent(entry.Coverage)

	entries, err := t.Load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].Day == entry.Day {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("create tracker directory: %w", err)
	}
	if err := t.write(entries); err != nil {
		return err
	}
	logging.Tracker("updated day %d: %d tests, %.1f%% coverage", entry.Day, entry.TestsWritten, entry.Coverage)
	return nil
}

func (t *Tracker) write(entries []Entry) error {
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("create progress file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Day),
			formatBool(e.Completed),
			strconv.Itoa(e.TestsWritten),
			strconv.FormatFloat(e.Coverage, 'f', 1, 64),
			e.Notes,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for day %d: %w", e.Day, err)
		}
	}
	w.Flush()
	return w.Error()
}

func parseRow(rec []string) (Entry, error) {
	day, err := strconv.Atoi(rec[0])
	if err != nil {
		return Entry{}, fmt.Errorf("bad day %q", rec[0])
	}
	tests, err := strconv.Atoi(rec[2])
	if err != nil {
		return Entry{}, fmt.Errorf("bad test count %q", rec[2])
	}
	coverage, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad coverage %q", rec[3])
	}
	return Entry{
		Day:          day,
		Completed:    rec[1] == "yes",
		TestsWritten: tests,
		Coverage:     clampPercent(coverage),
		Notes:        rec[4],
	}, nil
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Summary aggregates the tracker for display.
type Summary struct {
	DaysTotal     int
	DaysCompleted int
	TotalTests    int
	LastCoverage  float64
}

// Summarize folds entries into a Summary. LastCoverage is the coverage of
// the highest completed day, falling back to the highest day with any value.
func Summarize(entries []Entry) Summary {
	s := Summary{DaysTotal: len(entries)}
	for _, e := range entries {
		if e.Completed {
			s.DaysCompleted++
			s.LastCoverage = e.Coverage
		}
		s.TotalTests += e.TestsWritten
	}
	if s.DaysCompleted == 0 {
		for _, e := range entries {
			if e.Coverage > 0 {
				s.LastCoverage = e.Coverage
			}
		}
	}
	return s
}
