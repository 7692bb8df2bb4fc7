package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coberturaSample = `<?xml version="1.0" encoding="utf-8"?>
<coverage line-rate="0.6542" branch-rate="0.5" version="1.9" timestamp="1717000000">
  <packages>
    <package name="Fujiq.Core" line-rate="0.6542" />
  </packages>
</coverage>`

func writeCoverage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCobertura(t *testing.T) {
	path := writeCoverage(t, t.TempDir(), "coverage.cobertura.xml", coberturaSample)

	pct, err := ParseCobertura(path)
	require.NoError(t, err)
	assert.InDelta(t, 65.42, pct, 0.01)
}

func TestParseCoberturaMissing(t *testing.T) {
	_, err := ParseCobertura(filepath.Join(t.TempDir(), "nope.xml"))
	assert.Error(t, err)
}

func TestParseCoberturaMalformed(t *testing.T) {
	path := writeCoverage(t, t.TempDir(), "coverage.cobertura.xml", "<not-coverage/>")

	_, err := ParseCobertura(path)
	assert.Error(t, err)
}

func TestLatestCoveragePicksNewest(t *testing.T) {
	dir := t.TempDir()
	old := writeCoverage(t, dir, "old.cobertura.xml",
		`<coverage line-rate="0.10"></coverage>`)
	newer := writeCoverage(t, dir, "new.cobertura.xml",
		`<coverage line-rate="0.80"></coverage>`)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	now := time.Now()
	require.NoError(t, os.Chtimes(newer, now, now))

	pct, ok := LatestCoverage([]string{old, newer})
	require.True(t, ok)
	assert.InDelta(t, 80.0, pct, 0.01)
}

func TestLatestCoverageNoneReadable(t *testing.T) {
	_, ok := LatestCoverage([]string{filepath.Join(t.TempDir(), "missing.xml")})
	assert.False(t, ok)
}
