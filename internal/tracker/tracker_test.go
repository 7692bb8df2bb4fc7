package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "progress.csv"))
}

func TestInitCreatesRows(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.Init(5))

	entries, err := tr.Load()
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Day)
		assert.False(t, e.Completed)
		assert.Zero(t, e.TestsWritten)
	}

	raw, err := os.ReadFile(tr.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Day,Completed,Tests Written,Coverage %,Notes\n"))
}

func TestInitDoesNotOverwrite(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.Init(3))
	require.NoError(t, tr.Update(Entry{Day: 2, Completed: true, TestsWritten: 4, Coverage: 40, Notes: "mocking day"}))

	// A second init must not reset progress.
	require.NoError(t, tr.Init(3))

	entries, err := tr.Load()
	require.NoError(t, err)
	assert.True(t, entries[1].Completed)
	assert.Equal(t, 4, entries[1].TestsWritten)
}

func TestUpdateUpsertsByDay(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.Init(3))

	require.NoError(t, tr.Update(Entry{Day: 1, Completed: true, TestsWritten: 3, Coverage: 21.5, Notes: "first tests"}))
	require.NoError(t, tr.Update(Entry{Day: 1, Completed: true, TestsWritten: 5, Coverage: 30, Notes: "revised"}))

	entries, err := tr.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 5, entries[0].TestsWritten)
	assert.Equal(t, "revised", entries[0].Notes)
}

func TestUpdateAppendsUnknownDay(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.Init(2))

	require.NoError(t, tr.Update(Entry{Day: 7, TestsWritten: 1}))

	entries, err := tr.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 7, entries[2].Day)
}

func TestUpdateWithoutInit(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Update(Entry{Day: 1, TestsWritten: 2}))

	entries, err := tr.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].TestsWritten)
}

func TestUpdateValidation(t *testing.T) {
	tr := newTestTracker(t)

	assert.Error(t, tr.Update(Entry{Day: 0}))
	assert.Error(t, tr.Update(Entry{Day: 1, TestsWritten: -1}))
}

func TestCoverageClamped(t *testing.T) {
	tr := newTestTracker(t)

	require.NoError(t, tr.Update(Entry{Day: 1, Coverage: 150}))
	require.NoError(t, tr.Update(Entry{Day: 2, Coverage: -5}))

	entries, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, 100.0, entries[0].Coverage)
	assert.Equal(t, 0.0, entries[1].Coverage)
}

func TestLoadMissingFile(t *testing.T) {
	tr := newTestTracker(t)

	entries, err := tr.Load()
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	tr := newTestTracker(t)
	csv := "Day,Completed,Tests Written,Coverage %,Notes\n" +
		"1,yes,3,25.0,good day\n" +
		"oops,yes,x,y,bad row\n" +
		"2,no,0,0.0,\n"
	require.NoError(t, os.WriteFile(tr.Path(), []byte(csv), 0644))

	entries, err := tr.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Day)
	assert.Equal(t, 2, entries[1].Day)
}

func TestNotesWithCommasSurviveRoundTrip(t *testing.T) {
	tr := newTestTracker(t)
	notes := `mocks, stubs, and a "fake" clock`

	require.NoError(t, tr.Update(Entry{Day: 1, Completed: true, Notes: notes}))

	entries, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, notes, entries[0].Notes)
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Day: 1, Completed: true, TestsWritten: 3, Coverage: 20},
		{Day: 2, Completed: true, TestsWritten: 5, Coverage: 35},
		{Day: 3, TestsWritten: 0},
	}

	s := Summarize(entries)
	assert.Equal(t, 3, s.DaysTotal)
	assert.Equal(t, 2, s.DaysCompleted)
	assert.Equal(t, 8, s.TotalTests)
	assert.Equal(t, 35.0, s.LastCoverage)
}
