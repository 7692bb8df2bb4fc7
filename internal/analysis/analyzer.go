package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"testlens/internal/config"
	"testlens/internal/logging"
	"testlens/internal/world"
)

// Analyzer scans a workspace and produces a Report.
type Analyzer struct {
	cfg     *config.Config
	scanner *world.Scanner
	factory *world.ParserFactory
}

// NewAnalyzer creates an Analyzer for the given workspace configuration.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		scanner: world.NewScanner(cfg.Analyzer.ExcludeDirs, cfg.Analyzer.MaxFileSize),
	}
}

// parsedFile pairs a source file with its extracted elements.
type parsedFile struct {
	path     string
	content  []byte
	elements []world.CodeElement
}

// Run analyzes the workspace rooted at root.
func (a *Analyzer) Run(ctx context.Context, root string) (*Report, error) {
	timer := logging.StartTimer(logging.CategoryAnalysis, "Analyzer.Run")
	defer timer.StopWithThreshold(30 * time.Second)

	scan, err := a.scanner.ScanWorkspace(root)
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}

	report := &Report{
		Workspace:   scan.Root,
		GeneratedAt: time.Now().UTC(),
		SourceFiles: len(scan.SourceFiles),
	}

	a.factory = world.NewParserFactory(scan.Root)

	projects := a.loadProjects(scan, report)
	parsed, err := a.parseSources(ctx, scan, report)
	if err != nil {
		return nil, err
	}

	a.detectStack(projects, report)
	a.buildClasses(parsed, projects, report)
	a.deriveTopics(report)

	logging.Analysis("report: %d classes (%d tested), %d test methods, framework=%s",
		len(report.Classes), countTested(report.Classes), report.TestMethods, report.Stack.TestFramework)

	return report, nil
}

// loadProjects parses solution and project files.
func (a *Analyzer) loadProjects(scan *world.ScanResult, report *Report) []*world.Project {
	if len(scan.SolutionFiles) > 0 {
		// Multiple solutions are rare; the first one names the workspace.
		if sln, err := world.ParseSolution(scan.SolutionFiles[0]); err == nil {
			report.Solution = sln.Name
		} else {
			logging.Get(logging.CategoryAnalysis).Warn("solution parse failed: %v", err)
		}
	}

	var projects []*world.Project
	for _, path := range scan.ProjectFiles {
		proj, err := world.ParseProject(path)
		if err != nil {
			logging.Get(logging.CategoryAnalysis).Warn("project parse failed: %v", err)
			report.ParseErrors++
			continue
		}
		projects = append(projects, proj)
		report.Projects = append(report.Projects, proj.Name)
		if proj.IsTest {
			report.TestProjects = append(report.TestProjects, proj.Name)
		}
	}
	sort.Strings(report.Projects)
	sort.Strings(report.TestProjects)
	return projects
}

// parseSources parses all C# files concurrently. A cancelled context is an
// error: a partial parse must never be reported (or snapshotted) as complete.
func (a *Analyzer) parseSources(ctx context.Context, scan *world.ScanResult, report *Report) ([]parsedFile, error) {
	workers := a.cfg.Analyzer.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var parsed []parsedFile
	parseErrors := 0

	for _, path := range scan.SourceFiles {
		if !a.factory.HasParser(path) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := a.scanner.ReadSource(path)
			if err != nil {
				logging.Get(logging.CategoryScan).Warn("read failed: %v", err)
				mu.Lock()
				parseErrors++
				mu.Unlock()
				return nil
			}
			// Tree-sitter parsers are not safe for concurrent use; each
			// goroutine gets its own.
			parser := world.NewCSharpCodeParser(scan.Root)
			elements, err := parser.Parse(path, content)
			if err != nil {
				mu.Lock()
				parseErrors++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			parsed = append(parsed, parsedFile{path: path, content: content, elements: elements})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	report.ParseErrors += parseErrors

	// Stable order regardless of goroutine completion order.
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].path < parsed[j].path })
	return parsed, nil
}

// detectStack inspects package references across all projects.
func (a *Analyzer) detectStack(projects []*world.Project, report *Report) {
	for _, proj := range projects {
		switch {
		case proj.HasPackage("xunit"):
			report.Stack.TestFramework = "xunit"
		case proj.HasPackage("nunit") && report.Stack.TestFramework == "":
			report.Stack.TestFramework = "nunit"
		case proj.HasPackage("mstest") && report.Stack.TestFramework == "":
			report.Stack.TestFramework = "mstest"
		}
		if proj.HasPackage("moq") {
			report.Stack.HasMoq = true
		}
		if proj.HasPackage("nsubstitute") {
			report.Stack.HasNSubstitute = true
		}
		if proj.HasPackage("fluentassertions") {
			report.Stack.HasFluentAssertions = true
		}
		if proj.HasPackage("autofixture") {
			report.Stack.HasAutoFixture = true
		}
		if proj.HasPackage("coverlet") {
			report.Stack.HasCoverlet = true
		}
	}
}

// buildClasses correlates parsed elements into per-class info and matches
// test classes to their subjects by naming convention (UserServiceTests ->
// UserService).
func (a *Analyzer) buildClasses(parsed []parsedFile, projects []*world.Project, report *Report) {
	type testClass struct {
		name    string
		methods int
	}

	var classes []ClassInfo
	var testClasses []testClass

	for _, file := range parsed {
		lines := strings.Split(string(file.content), "\n")
		inTestProject := a.ownedByTestProject(file.path, projects)

		for _, elem := range file.elements {
			if elem.Type != world.ElementClass && elem.Type != world.ElementRecord {
				continue
			}

			methods, testMethods, publicNames := memberStats(file.elements, elem.Ref)

			// A test-like name alone is not enough: a domain class called
			// StressTest must stay in the coverage denominator.
			if inTestProject || testMethods > 0 {
				if testMethods > 0 || isTestClassName(elem.Name) {
					testClasses = append(testClasses, testClass{name: elem.Name, methods: testMethods})
					report.TestClasses++
					report.TestMethods += testMethods
					continue
				}
			}

			if elem.Visibility != world.VisibilityPublic {
				continue
			}

			info := ClassInfo{
				Name:          elem.Name,
				Ref:           elem.Ref,
				File:          file.path,
				Namespace:     elem.Namespace,
				Project:       a.owningProject(file.path, projects),
				CtorDeps:      ctorDeps(file.elements, elem.Ref),
				Methods:       methods,
				PublicAPI:     len(publicNames),
				PublicMethods: publicNames,
				IsStatic:      elem.IsStatic,
				IsAbstract:    elem.IsAbstract,
			}
			info.Score, info.Smells = ScoreClass(info, classBody(lines, elem.StartLine, elem.EndLine))
			classes = append(classes, info)
		}
	}

	// Match subjects to test classes.
	for i := range classes {
		for _, tc := range testClasses {
			if subjectName(tc.name) == classes[i].Name {
				classes[i].HasTests = true
				classes[i].TestClass = tc.name
				classes[i].TestMethods = tc.methods
				break
			}
		}
	}

	sort.Slice(classes, func(i, j int) bool { return classes[i].Ref < classes[j].Ref })
	report.Classes = classes
}

// deriveTopics maps observed gaps to curriculum topic keys, strongest first.
func (a *Analyzer) deriveTopics(report *Report) {
	topics := []string{"fundamentals", "assertions"}

	untestedWithDeps := 0
	for _, c := range report.Classes {
		if !c.HasTests && len(c.CtorDeps) > 0 {
			untestedWithDeps++
		}
	}
	if untestedWithDeps > 0 || !report.Stack.HasMoq && !report.Stack.HasNSubstitute {
		topics = append(topics, "mocking")
	}
	if !report.Stack.HasAutoFixture {
		topics = append(topics, "test-data")
	}
	if !report.Stack.HasCoverlet || report.Coverage() < 80 {
		topics = append(topics, "coverage")
	}

	report.Topics = topics
}

// ownedByTestProject reports whether path lives under a test project directory.
func (a *Analyzer) ownedByTestProject(path string, projects []*world.Project) bool {
	for _, proj := range projects {
		if !proj.IsTest {
			continue
		}
		dir := filepath.Dir(proj.Path)
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// owningProject returns the name of the project whose directory contains path.
func (a *Analyzer) owningProject(path string, projects []*world.Project) string {
	best := ""
	bestLen := -1
	for _, proj := range projects {
		dir := filepath.Dir(proj.Path)
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			if len(dir) > bestLen {
				best = proj.Name
				bestLen = len(dir)
			}
		}
	}
	return best
}

// memberStats counts methods belonging to a class ref and collects the
// public method names in declaration order.
func memberStats(elements []world.CodeElement, classRef string) (methods, testMethods int, publicNames []string) {
	for _, e := range elements {
		if e.Parent != classRef {
			continue
		}
		if e.Type == world.ElementMethod {
			methods++
			if e.Visibility == world.VisibilityPublic {
				publicNames = append(publicNames, e.Name)
			}
			if e.IsTestMethod() {
				testMethods++
			}
		}
	}
	return methods, testMethods, publicNames
}

// ctorDeps returns the parameters of the class's largest constructor.
func ctorDeps(elements []world.CodeElement, classRef string) []world.Parameter {
	var deps []world.Parameter
	for _, e := range elements {
		if e.Parent == classRef && e.Type == world.ElementCtor && len(e.Parameters) > len(deps) {
			deps = e.Parameters
		}
	}
	return deps
}

// isTestClassName matches the naming conventions the curriculum teaches.
func isTestClassName(name string) bool {
	return strings.HasSuffix(name, "Tests") || strings.HasSuffix(name, "Test") ||
		strings.HasSuffix(name, "Spec") || strings.HasSuffix(name, "Specs")
}

// subjectName strips the test suffix: UserServiceTests -> UserService.
func subjectName(testName string) string {
	for _, suffix := range []string{"Tests", "Test", "Specs", "Spec"} {
		if strings.HasSuffix(testName, suffix) {
			return strings.TrimSuffix(testName, suffix)
		}
	}
	return testName
}

// classBody slices the source lines covered by a class declaration.
func classBody(lines []string, startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

func countTested(classes []ClassInfo) int {
	n := 0
	for _, c := range classes {
		if c.HasTests {
			n++
		}
	}
	return n
}
