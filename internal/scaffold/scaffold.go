// Package scaffold generates xunit-style test projects for untested code.
// Generation is strictly additive: existing files are never overwritten.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"testlens/internal/analysis"
	"testlens/internal/logging"
	"testlens/internal/world"
)

// maxSkeletons caps how many test class skeletons one run generates. The
// point is a starting kit, not a wall of empty files.
const maxSkeletons = 5

// Result reports what a scaffold run did.
type Result struct {
	ProjectDir string
	Created    []string
	Skipped    []string
}

type packageRef struct {
	Name    string
	Version string
}

// Scaffolder creates test projects from an analysis report.
type Scaffolder struct {
	report *analysis.Report
}

// NewScaffolder creates a Scaffolder over a completed analysis.
func NewScaffolder(report *analysis.Report) *Scaffolder {
	return &Scaffolder{report: report}
}

// Generate creates <project>.Tests next to the named source project. When
// project is empty the first non-test project in the report is used.
func (s *Scaffolder) Generate(root, project string) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryScaffold, "Generate")
	defer timer.Stop()

	subject, err := s.pickProject(root, project)
	if err != nil {
		return nil, err
	}

	testName := subject.Name + ".Tests"
	testDir := filepath.Join(testProjectParent(root, subject.Path), testName)

	result := &Result{ProjectDir: testDir}

	if err := os.MkdirAll(testDir, 0755); err != nil {
		return nil, fmt.Errorf("create test project directory: %w", err)
	}

	csprojPath := filepath.Join(testDir, testName+".csproj")
	csproj, err := s.renderCsproj(subject, testDir)
	if err != nil {
		return nil, err
	}
	s.writeNew(csprojPath, csproj, result)

	usings, err := s.renderGlobalUsings()
	if err != nil {
		return nil, err
	}
	s.writeNew(filepath.Join(testDir, "GlobalUsings.cs"), usings, result)

	for _, class := range s.skeletonTargets(subject.Name) {
		content, err := s.renderTestClass(testName, class)
		if err != nil {
			return nil, err
		}
		s.writeNew(filepath.Join(testDir, class.Name+"Tests.cs"), content, result)
	}

	logging.Scaffold("scaffolded %s: %d created, %d skipped",
		testName, len(result.Created), len(result.Skipped))
	return result, nil
}

// testProjectParent picks the directory the test project is created in:
// normally the sibling of the subject's directory. A csproj sitting at the
// workspace root keeps the test project inside the workspace instead of
// escaping to the root's parent.
func testProjectParent(root, csprojPath string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	projDir := filepath.Dir(csprojPath)
	if projDir == root {
		return projDir
	}
	return filepath.Dir(projDir)
}

// pickProject resolves the subject project by name, or defaults to the first
// non-test project.
func (s *Scaffolder) pickProject(root, name string) (*world.Project, error) {
	scanner := world.NewScanner(nil, 0)
	scan, err := scanner.ScanWorkspace(root)
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}

	var candidates []*world.Project
	for _, path := range scan.ProjectFiles {
		proj, err := world.ParseProject(path)
		if err != nil {
			continue
		}
		if proj.IsTest {
			continue
		}
		candidates = append(candidates, proj)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no source projects found under %s", root)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	if name == "" {
		return candidates[0], nil
	}
	for _, proj := range candidates {
		if strings.EqualFold(proj.Name, name) {
			return proj, nil
		}
	}
	return nil, fmt.Errorf("project %q not found", name)
}

// writeNew writes content unless path already exists.
func (s *Scaffolder) writeNew(path string, content []byte, result *Result) {
	if _, err := os.Stat(path); err == nil {
		logging.ScaffoldDebug("exists, skipping: %s", path)
		result.Skipped = append(result.Skipped, path)
		return
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		logging.Get(logging.CategoryScaffold).Error("write failed: %v", err)
		result.Skipped = append(result.Skipped, path)
		return
	}
	result.Created = append(result.Created, path)
}

func (s *Scaffolder) renderCsproj(subject *world.Project, testDir string) ([]byte, error) {
	tfm := subject.TargetFramework
	if tfm == "" {
		tfm = "net8.0"
	}

	rel, err := filepath.Rel(testDir, subject.Path)
	if err != nil {
		rel = subject.Path
	}

	data := struct {
		TargetFramework  string
		Packages         []packageRef
		ProjectReference string
	}{
		TargetFramework:  tfm,
		Packages:         s.packages(),
		ProjectReference: filepath.ToSlash(rel),
	}

	var buf bytes.Buffer
	if err := csprojTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render csproj: %w", err)
	}
	return buf.Bytes(), nil
}

// packages picks the dependency set for the generated project, reusing the
// stack the workspace already standardized on.
func (s *Scaffolder) packages() []packageRef {
	stack := s.report.Stack

	names := []string{"Microsoft.NET.Test.Sdk"}
	switch stack.TestFramework {
	case "nunit":
		names = append(names, "NUnit", "NUnit3TestAdapter")
	case "mstest":
		names = append(names, "MSTest.TestFramework", "MSTest.TestAdapter")
	default:
		names = append(names, "xunit", "xunit.runner.visualstudio")
	}
	if stack.HasNSubstitute {
		names = append(names, "NSubstitute")
	} else {
		names = append(names, "Moq")
	}
	names = append(names, "FluentAssertions", "AutoFixture", "coverlet.collector")

	refs := make([]packageRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, packageRef{Name: n, Version: defaultPackages[n]})
	}
	return refs
}

// frameworkTokens are the framework-specific pieces the generated code needs.
// The csproj, usings, and skeletons must agree or the project will not compile.
type frameworkTokens struct {
	TestUsing      string
	TestAttribute  string
	ClassAttribute string
	NotNullAssert  string
}

func tokensFor(framework string) frameworkTokens {
	switch framework {
	case "nunit":
		return frameworkTokens{
			TestUsing:      "NUnit.Framework",
			TestAttribute:  "Test",
			ClassAttribute: "TestFixture",
			NotNullAssert:  "Assert.That(sut, Is.Not.Null);",
		}
	case "mstest":
		return frameworkTokens{
			TestUsing:      "Microsoft.VisualStudio.TestTools.UnitTesting",
			TestAttribute:  "TestMethod",
			ClassAttribute: "TestClass",
			NotNullAssert:  "Assert.IsNotNull(sut);",
		}
	default:
		return frameworkTokens{
			TestUsing:     "Xunit",
			TestAttribute: "Fact",
			NotNullAssert: "Assert.NotNull(sut);",
		}
	}
}

func (s *Scaffolder) renderGlobalUsings() ([]byte, error) {
	data := struct {
		TestUsing           string
		HasMoq              bool
		HasFluentAssertions bool
		HasAutoFixture      bool
	}{
		TestUsing:           tokensFor(s.report.Stack.TestFramework).TestUsing,
		HasMoq:              !s.report.Stack.HasNSubstitute,
		HasFluentAssertions: true,
		HasAutoFixture:      true,
	}

	var buf bytes.Buffer
	if err := globalUsingsTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render global usings: %w", err)
	}
	return buf.Bytes(), nil
}

// skeletonTargets picks the untested classes of the subject project, worst
// testability first.
func (s *Scaffolder) skeletonTargets(project string) []analysis.ClassInfo {
	var targets []analysis.ClassInfo
	for _, c := range s.report.Untested() {
		if c.IsStatic || (project != "" && c.Project != "" && c.Project != project) {
			continue
		}
		targets = append(targets, c)
		if len(targets) == maxSkeletons {
			break
		}
	}
	return targets
}

type mockField struct {
	Type      string
	FieldName string
}

func (s *Scaffolder) renderTestClass(testProject string, class analysis.ClassInfo) ([]byte, error) {
	namespace := class.Namespace + ".Tests"
	if class.Namespace == "" {
		namespace = strings.TrimSuffix(testProject, ".Tests") + ".Tests"
	}

	methods := publicMethods(class)
	tokens := tokensFor(s.report.Stack.TestFramework)

	var buf bytes.Buffer
	if len(class.CtorDeps) > 0 {
		deps := make([]mockField, 0, len(class.CtorDeps))
		for _, p := range class.CtorDeps {
			deps = append(deps, mockField{Type: p.Type, FieldName: fieldName(p)})
		}
		data := struct {
			frameworkTokens
			Namespace string
			ClassName string
			Deps      []mockField
			Methods   []string
		}{tokens, namespace, class.Name, deps, methods}
		if err := testClassTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render test class: %w", err)
		}
	} else {
		data := struct {
			frameworkTokens
			Namespace string
			ClassName string
			Methods   []string
		}{tokens, namespace, class.Name, methods}
		if err := testClassPlainTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render test class: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// publicMethods returns the subject's public method names, capped so a
// skeleton stays a starting point rather than a checklist.
func publicMethods(class analysis.ClassInfo) []string {
	names := class.PublicMethods
	if len(names) > 3 {
		names = names[:3]
	}
	return names
}

// fieldName derives a camelCase field name from a constructor parameter,
// preferring the parameter name and falling back to the type.
func fieldName(p world.Parameter) string {
	name := p.Name
	if name == "" {
		name = strings.TrimPrefix(p.Type, "I")
	}
	if name == "" {
		return "dep"
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
