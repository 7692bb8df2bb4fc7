package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBuckets(t *testing.T) {
	assert.Contains(t, Score(95), "95")
	assert.Contains(t, Score(70), "70")
	assert.Contains(t, Score(10), "10")
}

func TestPercent(t *testing.T) {
	assert.Contains(t, Percent(82.4), "82%")
	assert.Contains(t, Percent(0), "0%")
}

func TestCheck(t *testing.T) {
	assert.Contains(t, Check(true), "yes")
	assert.Contains(t, Check(false), "no")
}

func TestTablePadsColumns(t *testing.T) {
	out := Table([][]string{
		{"Class", "Score"},
		{"UserService", "100"},
		{"X", "5"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "UserService")
	assert.Contains(t, lines[2], "X")
}

func TestTableEmpty(t *testing.T) {
	assert.Empty(t, Table(nil))
}
