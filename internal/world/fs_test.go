package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanWorkspace(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, filepath.Join("Fujiq.Core", "User.cs"), "public class User {}")
	writeFile(t, tmpDir, filepath.Join("Fujiq.Core", "Fujiq.Core.csproj"), "<Project/>")
	writeFile(t, tmpDir, "Fujiq.sln", "")
	writeFile(t, tmpDir, filepath.Join("Fujiq.Core", "bin", "Debug", "Gen.cs"), "class Gen {}")
	writeFile(t, tmpDir, filepath.Join("Fujiq.Core", "obj", "Gen2.cs"), "class Gen2 {}")
	writeFile(t, tmpDir, filepath.Join(".git", "hidden.cs"), "class Hidden {}")
	writeFile(t, tmpDir, filepath.Join("TestResults", "coverage.cobertura.xml"), "<coverage/>")

	scanner := NewScanner([]string{"bin", "obj"}, 0)
	result, err := scanner.ScanWorkspace(tmpDir)
	require.NoError(t, err)

	require.Len(t, result.SourceFiles, 1)
	assert.Contains(t, result.SourceFiles[0], "User.cs")
	assert.Len(t, result.ProjectFiles, 1)
	assert.Len(t, result.SolutionFiles, 1)
	assert.Len(t, result.CoverageFiles, 1)
}

func TestScanWorkspaceSizeCap(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "Small.cs", "class A {}")

	big := make([]byte, 2048)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "Big.cs"), big, 0644))

	scanner := NewScanner(nil, 1024)
	result, err := scanner.ScanWorkspace(tmpDir)
	require.NoError(t, err)

	require.Len(t, result.SourceFiles, 1)
	assert.Contains(t, result.SourceFiles[0], "Small.cs")
	assert.Equal(t, 1, result.SkippedLarge)
}

func TestScanWorkspaceMissingRoot(t *testing.T) {
	scanner := NewScanner(nil, 0)
	result, err := scanner.ScanWorkspace(filepath.Join(t.TempDir(), "does-not-exist"))
	// WalkDir reports the root error through the callback, which we tolerate.
	require.NoError(t, err)
	assert.Empty(t, result.SourceFiles)
}
