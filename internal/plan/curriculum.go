// Package plan turns an analysis report into a day-by-day learning plan.
// Generation is deterministic: the same report and options always produce
// the same plan.
package plan

import "strings"

// Skill is the learner's self-reported starting level.
type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

// ParseSkill normalizes user input; anything unrecognized means beginner.
func ParseSkill(s string) Skill {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate", "i", "mid":
		return SkillIntermediate
	case "advanced", "a", "expert":
		return SkillAdvanced
	default:
		return SkillBeginner
	}
}

// Day count bounds. A plan shorter than a day or longer than a month stops
// being a plan.
const (
	MinDays = 1
	MaxDays = 30
)

// ClampDays forces days into [MinDays, MaxDays].
func ClampDays(days int) int {
	if days < MinDays {
		return MinDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// Options controls plan generation.
type Options struct {
	Days  int
	Skill Skill
}

// Topic is one curriculum unit. Objectives are keyed by skill so the same
// topic reads differently for a beginner and an advanced learner.
type Topic struct {
	Key        string
	Title      string
	Summary    string
	Objectives map[Skill][]string
}

// curriculum is the fixed topic catalog, addressed by the keys analysis
// emits in Report.Topics.
var curriculum = map[string]Topic{
	"fundamentals": {
		Key:     "fundamentals",
		Title:   "Unit Testing Fundamentals",
		Summary: "What a unit test is, the Arrange-Act-Assert pattern, and how to name tests so failures read like sentences.",
		Objectives: map[Skill][]string{
			SkillBeginner: {
				"Write a first test using the Arrange-Act-Assert pattern",
				"Adopt the MethodName_StateUnderTest_ExpectedBehavior naming convention",
				"Run the test suite from the command line with `dotnet test`",
			},
			SkillIntermediate: {
				"Review existing tests for single-behavior focus and split any that assert too much",
				"Replace duplicated setup with constructor initialization in the test class",
			},
			SkillAdvanced: {
				"Audit the suite for hidden test interdependencies and shared mutable state",
				"Establish a team convention document for test structure and naming",
			},
		},
	},
	"assertions": {
		Key:     "assertions",
		Title:   "Assertions That Explain Failures",
		Summary: "Choosing the assertion that produces the clearest failure message, including FluentAssertions for complex objects and collections.",
		Objectives: map[Skill][]string{
			SkillBeginner: {
				"Use equality, boolean, and exception assertions appropriately",
				"Rewrite one assert-heavy test with FluentAssertions and compare the failure output",
			},
			SkillIntermediate: {
				"Assert on collections with Should().BeEquivalentTo and understand ordering semantics",
				"Use Assert.Throws / Should().Throw to pin down exception contracts",
			},
			SkillAdvanced: {
				"Write custom assertion extensions for recurring domain checks",
				"Tighten loose assertions (NotNull where an exact value is knowable)",
			},
		},
	},
	"mocking": {
		Key:     "mocking",
		Title:   "Isolating Dependencies with Mocks",
		Summary: "Substituting constructor dependencies with test doubles so tests exercise one class at a time.",
		Objectives: map[Skill][]string{
			SkillBeginner: {
				"Create a Mock<T> for an interface dependency and return a canned value",
				"Verify a method call happened with the expected arguments",
			},
			SkillIntermediate: {
				"Distinguish stubs from mocks and stop verifying what should merely be stubbed",
				"Test error paths by making a mock throw",
			},
			SkillAdvanced: {
				"Refactor a class that news up its own collaborators so they can be substituted",
				"Wrap static dependencies (clock, filesystem) behind interfaces and inject them",
			},
		},
	},
	"test-data": {
		Key:     "test-data",
		Title:   "Test Data Builders and AutoFixture",
		Summary: "Keeping tests readable when the subject needs complex object graphs.",
		Objectives: map[Skill][]string{
			SkillBeginner: {
				"Use AutoFixture to create anonymous values and reduce setup noise",
				"Identify which values in a test are load-bearing and which are incidental",
			},
			SkillIntermediate: {
				"Write a test data builder for the most constructed entity in the codebase",
				"Customize AutoFixture for types with invariants the generator cannot guess",
			},
			SkillAdvanced: {
				"Combine AutoFixture with xunit Theory via AutoData attributes",
				"Property-style tests: generate many inputs and assert invariants hold",
			},
		},
	},
	"coverage": {
		Key:     "coverage",
		Title:   "Coverage as a Flashlight",
		Summary: "Measuring coverage with coverlet, reading the report, and using it to find untested branches rather than to chase a number.",
		Objectives: map[Skill][]string{
			SkillBeginner: {
				"Collect coverage with `dotnet test --collect:\"XPlat Code Coverage\"`",
				"Open the cobertura report and find the least covered class",
			},
			SkillIntermediate: {
				"Write tests for the uncovered branches of one conditional-heavy method",
				"Record the coverage number in the progress tracker after each session",
			},
			SkillAdvanced: {
				"Set a ratchet: fail the build when coverage drops below the last recorded value",
				"Identify code where coverage is high but assertions are weak",
			},
		},
	},
}

// topicOrder fixes the presentation order when topic keys are equal in weight.
var topicOrder = []string{"fundamentals", "assertions", "mocking", "test-data", "coverage"}

// resolveTopics maps report topic keys onto catalog entries, preserving the
// catalog order and dropping unknown keys.
func resolveTopics(keys []string) []Topic {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []Topic
	for _, key := range topicOrder {
		if want[key] {
			out = append(out, curriculum[key])
		}
	}
	if len(out) == 0 {
		out = append(out, curriculum["fundamentals"])
	}
	return out
}
