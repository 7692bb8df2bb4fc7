package store

import (
	"fmt"
	"sort"
)

// ClassChange records a per-class difference between two snapshots.
type ClassChange struct {
	Ref        string
	Name       string
	ScoreFrom  int
	ScoreTo    int
	TestsFrom  int
	TestsTo    int
	GainedTest bool
	LostTest   bool
}

// Delta summarizes what changed between two snapshots.
type Delta struct {
	FromID       string
	ToID         string
	CoverageFrom float64
	CoverageTo   float64
	TestsFrom    int
	TestsTo      int

	NewClasses     []string
	RemovedClasses []string
	Changed        []ClassChange
}

// TestsGained returns the net change in test method count.
func (d *Delta) TestsGained() int { return d.TestsTo - d.TestsFrom }

// CoverageGained returns the coverage percentage point change.
func (d *Delta) CoverageGained() float64 { return d.CoverageTo - d.CoverageFrom }

// Delta computes the per-class differences between two snapshots.
func (s *SnapshotStore) Delta(fromID, toID string) (*Delta, error) {
	from, err := s.GetSnapshot(fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.GetSnapshot(toID)
	if err != nil {
		return nil, err
	}

	fromStats, err := s.ClassStats(fromID)
	if err != nil {
		return nil, fmt.Errorf("load class stats %s: %w", fromID, err)
	}
	toStats, err := s.ClassStats(toID)
	if err != nil {
		return nil, fmt.Errorf("load class stats %s: %w", toID, err)
	}

	fromByRef := map[string]ClassStat{}
	for _, cs := range fromStats {
		fromByRef[cs.Ref] = cs
	}

	delta := &Delta{
		FromID:       from.ID,
		ToID:         to.ID,
		CoverageFrom: from.Coverage,
		CoverageTo:   to.Coverage,
		TestsFrom:    from.TestMethods,
		TestsTo:      to.TestMethods,
	}

	seen := map[string]bool{}
	for _, cur := range toStats {
		seen[cur.Ref] = true
		prev, ok := fromByRef[cur.Ref]
		if !ok {
			delta.NewClasses = append(delta.NewClasses, cur.Name)
			continue
		}
		if prev.Score == cur.Score && prev.HasTests == cur.HasTests &&
			prev.TestMethods == cur.TestMethods {
			continue
		}
		delta.Changed = append(delta.Changed, ClassChange{
			Ref:        cur.Ref,
			Name:       cur.Name,
			ScoreFrom:  prev.Score,
			ScoreTo:    cur.Score,
			TestsFrom:  prev.TestMethods,
			TestsTo:    cur.TestMethods,
			GainedTest: !prev.HasTests && cur.HasTests,
			LostTest:   prev.HasTests && !cur.HasTests,
		})
	}
	for _, prev := range fromStats {
		if !seen[prev.Ref] {
			delta.RemovedClasses = append(delta.RemovedClasses, prev.Name)
		}
	}

	sort.Strings(delta.NewClasses)
	sort.Strings(delta.RemovedClasses)
	sort.Slice(delta.Changed, func(i, j int) bool { return delta.Changed[i].Ref < delta.Changed[j].Ref })

	return delta, nil
}
