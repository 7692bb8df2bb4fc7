// Package analysis builds a testing-posture report for a .NET workspace.
// It joins the world scan (projects, solutions, parsed C# elements) into
// per-class testability information, detects the testing stack in use, and
// derives the topic gaps that drive plan generation and scaffolding.
package analysis

import (
	"sort"
	"time"

	"testlens/internal/world"
)

// StackInfo describes the testing stack detected across test projects.
type StackInfo struct {
	TestFramework       string `json:"test_framework"` // xunit, nunit, mstest, or "" when absent
	HasMoq              bool   `json:"has_moq"`
	HasNSubstitute      bool   `json:"has_nsubstitute"`
	HasFluentAssertions bool   `json:"has_fluent_assertions"`
	HasAutoFixture      bool   `json:"has_auto_fixture"`
	HasCoverlet         bool   `json:"has_coverlet"`
}

// ClassInfo is the per-class analysis result.
type ClassInfo struct {
	Name      string            `json:"name"`
	Ref       string            `json:"ref"`
	File      string            `json:"file"`
	Namespace string            `json:"namespace"`
	Project   string            `json:"project,omitempty"`
	CtorDeps  []world.Parameter `json:"ctor_deps,omitempty"`
	Methods   int               `json:"methods"`
	PublicAPI int               `json:"public_api"`
	// PublicMethods lists public method names in declaration order.
	PublicMethods []string `json:"public_methods,omitempty"`
	IsStatic      bool     `json:"is_static"`
	IsAbstract    bool     `json:"is_abstract"`
	Score         int      `json:"score"` // testability, 0-100
	Smells        []string `json:"smells,omitempty"`
	HasTests      bool     `json:"has_tests"`
	TestClass     string   `json:"test_class,omitempty"`
	TestMethods   int      `json:"test_methods"`
}

// Report is the full analysis output for one workspace snapshot.
type Report struct {
	Workspace   string    `json:"workspace"`
	GeneratedAt time.Time `json:"generated_at"`

	Solution     string   `json:"solution,omitempty"`
	Projects     []string `json:"projects"`
	TestProjects []string `json:"test_projects"`

	Stack StackInfo `json:"stack"`

	Classes     []ClassInfo `json:"classes"`
	TestClasses int         `json:"test_classes"`
	TestMethods int         `json:"test_methods"`

	// Topics lists curriculum topic keys the workspace is weakest in,
	// strongest gap first. Consumed by plan generation.
	Topics []string `json:"topics"`

	SourceFiles int `json:"source_files"`
	ParseErrors int `json:"parse_errors"`
}

// Untested returns the public, concrete classes without a matched test class,
// ordered worst testability score first.
func (r *Report) Untested() []ClassInfo {
	var out []ClassInfo
	for _, c := range r.Classes {
		if !c.HasTests && !c.IsAbstract {
			out = append(out, c)
		}
	}
	sortByScoreAsc(out)
	return out
}

// Coverage returns tested class count over total class count as a percentage.
func (r *Report) Coverage() float64 {
	if len(r.Classes) == 0 {
		return 0
	}
	tested := 0
	for _, c := range r.Classes {
		if c.HasTests {
			tested++
		}
	}
	return float64(tested) / float64(len(r.Classes)) * 100
}

// HasTestProject reports whether any test project exists in the workspace.
func (r *Report) HasTestProject() bool {
	return len(r.TestProjects) > 0
}

func sortByScoreAsc(classes []ClassInfo) {
	sort.SliceStable(classes, func(i, j int) bool {
		return less(classes[i], classes[j])
	})
}

// less orders by score, breaking ties by larger public surface then name.
func less(a, b ClassInfo) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.PublicAPI != b.PublicAPI {
		return a.PublicAPI > b.PublicAPI
	}
	return a.Name < b.Name
}
