package world

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"testlens/internal/logging"
)

// Project is a parsed .csproj file.
type Project struct {
	Name            string
	Path            string
	TargetFramework string
	PackageRefs     []PackageRef
	ProjectRefs     []string
	IsTest          bool
}

// PackageRef is a NuGet package reference.
type PackageRef struct {
	Name    string
	Version string
}

// Solution is a parsed .sln file.
type Solution struct {
	Name     string
	Path     string
	Projects []string // csproj paths, resolved relative to the sln directory
}

// Test framework and tooling packages recognized during stack detection.
var testPackages = map[string]bool{
	"xunit":                     true,
	"xunit.runner.visualstudio": true,
	"nunit":                     true,
	"nunit3testadapter":         true,
	"mstest.testframework":      true,
	"mstest.testadapter":        true,
	"microsoft.net.test.sdk":    true,
}

// csprojXML mirrors the MSBuild project XML structure.
type csprojXML struct {
	XMLName        xml.Name `xml:"Project"`
	PropertyGroups []struct {
		TargetFramework  string `xml:"TargetFramework"`
		TargetFrameworks string `xml:"TargetFrameworks"`
		IsTestProject    string `xml:"IsTestProject"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		PackageReferences []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageReference"`
		ProjectReferences []struct {
			Include string `xml:"Include,attr"`
		} `xml:"ProjectReference"`
	} `xml:"ItemGroup"`
}

// ParseProject parses a .csproj file.
func ParseProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}

	var doc csprojXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}

	proj := &Project{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}

	for _, pg := range doc.PropertyGroups {
		if pg.TargetFramework != "" {
			proj.TargetFramework = pg.TargetFramework
		} else if pg.TargetFrameworks != "" && proj.TargetFramework == "" {
			// Multi-targeting: keep the first entry.
			proj.TargetFramework = strings.Split(pg.TargetFrameworks, ";")[0]
		}
		if strings.EqualFold(pg.IsTestProject, "true") {
			proj.IsTest = true
		}
	}

	dir := filepath.Dir(path)
	for _, ig := range doc.ItemGroups {
		for _, pr := range ig.PackageReferences {
			if pr.Include == "" {
				continue
			}
			proj.PackageRefs = append(proj.PackageRefs, PackageRef{Name: pr.Include, Version: pr.Version})
			if testPackages[strings.ToLower(pr.Include)] {
				proj.IsTest = true
			}
		}
		for _, pref := range ig.ProjectReferences {
			if pref.Include == "" {
				continue
			}
			// MSBuild paths use backslashes regardless of host OS.
			rel := filepath.FromSlash(strings.ReplaceAll(pref.Include, `\`, "/"))
			proj.ProjectRefs = append(proj.ProjectRefs, filepath.Clean(filepath.Join(dir, rel)))
		}
	}

	// Naming convention fallback: Foo.Tests / Foo.UnitTests
	if !proj.IsTest {
		lower := strings.ToLower(proj.Name)
		if strings.HasSuffix(lower, ".tests") || strings.HasSuffix(lower, ".unittests") || strings.HasSuffix(lower, ".test") {
			proj.IsTest = true
		}
	}

	logging.ScanDebug("parsed project %s (tfm=%s, packages=%d, test=%v)",
		proj.Name, proj.TargetFramework, len(proj.PackageRefs), proj.IsTest)

	return proj, nil
}

// HasPackage reports whether the project references a package (case-insensitive,
// prefix match so "xunit" also matches "xunit.runner.visualstudio").
func (p *Project) HasPackage(name string) bool {
	name = strings.ToLower(name)
	for _, ref := range p.PackageRefs {
		if strings.HasPrefix(strings.ToLower(ref.Name), name) {
			return true
		}
	}
	return false
}

// slnProjectLine matches the Project("{guid}") = "Name", "rel\path.csproj", "{guid}" lines.
var slnProjectLine = regexp.MustCompile(`Project\("\{[^}]+\}"\)\s*=\s*"([^"]+)",\s*"([^"]+)",\s*"\{[^}]+\}"`)

// ParseSolution parses a .sln file and resolves its project paths.
func ParseSolution(path string) (*Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read solution %s: %w", path, err)
	}

	sln := &Solution{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}

	dir := filepath.Dir(path)
	for _, match := range slnProjectLine.FindAllStringSubmatch(string(data), -1) {
		rel := match[2]
		if !strings.HasSuffix(strings.ToLower(rel), ".csproj") {
			// Solution folders and non-C# projects are listed too; skip them.
			continue
		}
		rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
		sln.Projects = append(sln.Projects, filepath.Clean(filepath.Join(dir, rel)))
	}

	logging.ScanDebug("parsed solution %s (%d projects)", sln.Name, len(sln.Projects))

	return sln, nil
}
