package world

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"testlens/internal/logging"
)

// ScanResult holds the file inventory of a workspace walk.
type ScanResult struct {
	Root           string
	SourceFiles    []string // *.cs
	ProjectFiles   []string // *.csproj
	SolutionFiles  []string // *.sln
	CoverageFiles  []string // cobertura XML reports
	DirectoryCount int
	SkippedLarge   int
}

// Scanner walks a workspace collecting C# sources and MSBuild files.
type Scanner struct {
	excludeDirs map[string]struct{}
	maxFileSize int64
}

// NewScanner creates a Scanner. excludeDirs are directory names skipped
// anywhere in the tree; maxFileSize of 0 disables the size cap.
func NewScanner(excludeDirs []string, maxFileSize int64) *Scanner {
	ex := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		ex[strings.ToLower(d)] = struct{}{}
	}
	return &Scanner{excludeDirs: ex, maxFileSize: maxFileSize}
}

// ScanWorkspace walks root and returns the file inventory.
func (s *Scanner) ScanWorkspace(root string) (*ScanResult, error) {
	timer := logging.StartTimer(logging.CategoryScan, "ScanWorkspace")
	defer timer.Stop()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	result := &ScanResult{Root: abs}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Get(logging.CategoryScan).Warn("walk error at %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if path != abs && s.isExcluded(d.Name()) {
				return filepath.SkipDir
			}
			result.DirectoryCount++
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".cs":
			if s.maxFileSize > 0 {
				if info, err := d.Info(); err == nil && info.Size() > s.maxFileSize {
					logging.ScanDebug("skipping oversized file: %s", path)
					result.SkippedLarge++
					return nil
				}
			}
			result.SourceFiles = append(result.SourceFiles, path)
		case ".csproj":
			result.ProjectFiles = append(result.ProjectFiles, path)
		case ".sln":
			result.SolutionFiles = append(result.SolutionFiles, path)
		case ".xml":
			if strings.Contains(strings.ToLower(filepath.Base(path)), "cobertura") {
				result.CoverageFiles = append(result.CoverageFiles, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}

	logging.Scan("scanned %s: %d sources, %d projects, %d solutions, %d dirs",
		abs, len(result.SourceFiles), len(result.ProjectFiles),
		len(result.SolutionFiles), result.DirectoryCount)

	return result, nil
}

// isExcluded reports whether a directory name is on the skip list.
// Hidden directories are always skipped except the workspace root itself.
func (s *Scanner) isExcluded(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := s.excludeDirs[strings.ToLower(name)]
	return ok
}

// ReadSource reads a source file, applying the same size cap as the walker.
func (s *Scanner) ReadSource(path string) ([]byte, error) {
	if s.maxFileSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > s.maxFileSize {
			return nil, fmt.Errorf("file exceeds size cap: %s", path)
		}
	}
	return os.ReadFile(path)
}
