package tracker

import (
	"encoding/xml"
	"fmt"
	"os"

	"testlens/internal/logging"
)

// coberturaReport maps the root element of a cobertura XML report. Only the
// line rate is needed; coverlet writes it as a 0..1 fraction.
type coberturaReport struct {
	XMLName  xml.Name `xml:"coverage"`
	LineRate float64  `xml:"line-rate,attr"`
}

// ParseCobertura reads a cobertura report and returns line coverage as a
// percentage.
func ParseCobertura(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read coverage report: %w", err)
	}

	var report coberturaReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("parse coverage report %s: %w", path, err)
	}
	return clampPercent(report.LineRate * 100), nil
}

// LatestCoverage parses the newest readable report from a candidate list.
// Returns false when none of them parse.
func LatestCoverage(paths []string) (float64, bool) {
	bestTime := int64(-1)
	best := 0.0
	found := false

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		pct, err := ParseCobertura(path)
		if err != nil {
			logging.Get(logging.CategoryTracker).Warn("unreadable coverage report %s: %v", path, err)
			continue
		}
		if mod := info.ModTime().UnixNano(); mod > bestTime {
			bestTime = mod
			best = pct
			found = true
		}
	}
	return best, found
}
