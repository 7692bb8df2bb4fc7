package plan

import (
	"fmt"
	"strings"
	"time"

	"testlens/internal/analysis"
	"testlens/internal/logging"
)

// Day is one entry in the generated plan.
type Day struct {
	Number     int
	Title      string
	TopicKey   string
	Summary    string
	Objectives []string
	Exercises  []string
	Milestone  string
}

// Plan is a complete generated learning plan.
type Plan struct {
	Workspace   string
	Solution    string
	Skill       Skill
	GeneratedAt time.Time
	Days        []Day

	// Context for the rendered header.
	Coverage    float64
	TestMethods int
	Framework   string
	UntestedTop []string
	HasTestProj bool
}

// Generate builds a plan from a report. Days are clamped to [MinDays,
// MaxDays] and an unknown skill falls back to beginner.
func Generate(report *analysis.Report, opts Options) *Plan {
	days := ClampDays(opts.Days)
	skill := ParseSkill(string(opts.Skill))
	topics := resolveTopics(report.Topics)
	untested := report.Untested()

	p := &Plan{
		Workspace:   report.Workspace,
		Solution:    report.Solution,
		Skill:       skill,
		GeneratedAt: report.GeneratedAt,
		Coverage:    report.Coverage(),
		TestMethods: report.TestMethods,
		Framework:   report.Stack.TestFramework,
		HasTestProj: report.HasTestProject(),
	}
	for i, c := range untested {
		if i == 3 {
			break
		}
		p.UntestedTop = append(p.UntestedTop, c.Name)
	}

	for i := 0; i < days; i++ {
		topic := topics[i*len(topics)/days]
		revisit := i > 0 && topics[(i-1)*len(topics)/days].Key == topic.Key

		day := Day{
			Number:     i + 1,
			TopicKey:   topic.Key,
			Title:      topic.Title,
			Summary:    topic.Summary,
			Objectives: topic.Objectives[skill],
			Milestone:  fmt.Sprintf("Log the session: `testlens tracker update --day %d --tests <n> --coverage <pct>`", i+1),
		}
		if revisit {
			day.Title = topic.Title + " (continued)"
			day.Summary = "Keep working through the objectives from the previous day, then go deeper with today's exercise."
		}
		day.Exercises = exercisesFor(topic, untested, i)
		p.Days = append(p.Days, day)
	}

	logging.Plan("generated %d-day plan (%s) covering %d topics",
		days, skill, len(topics))
	return p
}

// exercisesFor names concrete classes from the workspace so every day has a
// real target, cycling through the untested list worst first.
func exercisesFor(topic Topic, untested []analysis.ClassInfo, dayIndex int) []string {
	if len(untested) == 0 {
		return []string{genericExercise(topic)}
	}

	class := untested[dayIndex%len(untested)]
	var out []string

	switch topic.Key {
	case "fundamentals":
		out = append(out, fmt.Sprintf(
			"Create `%sTests` and write your first passing test for `%s` (testability score %d).",
			class.Name, class.Name, class.Score))
	case "assertions":
		out = append(out, fmt.Sprintf(
			"Write three tests for `%s` using three different assertion styles, then pick the one with the clearest failure message.",
			class.Name))
	case "mocking":
		if len(class.CtorDeps) > 0 {
			deps := make([]string, 0, len(class.CtorDeps))
			for _, d := range class.CtorDeps {
				deps = append(deps, "`"+d.Type+"`")
			}
			out = append(out, fmt.Sprintf(
				"Test `%s` by mocking its dependencies (%s) and verifying one interaction.",
				class.Name, strings.Join(deps, ", ")))
		} else {
			out = append(out, fmt.Sprintf(
				"`%s` takes no dependencies; find a class in the workspace that does and mock it there.",
				class.Name))
		}
	case "test-data":
		out = append(out, fmt.Sprintf(
			"Use AutoFixture to build the inputs for a `%s` test and keep only the load-bearing values explicit.",
			class.Name))
	case "coverage":
		out = append(out, fmt.Sprintf(
			"Run coverage, open the report for `%s`, and add tests for the reddest method.",
			class.Name))
	default:
		out = append(out, genericExercise(topic))
	}

	if len(class.Smells) > 0 && topic.Key != "coverage" {
		out = append(out, fmt.Sprintf(
			"While you are in `%s`, note its testability smells (%s) and sketch the refactor that would remove one.",
			class.Name, strings.Join(class.Smells, ", ")))
	}
	return out
}

func genericExercise(topic Topic) string {
	return fmt.Sprintf("Apply today's %s objectives to any class in the workspace you have not tested yet.", topic.Title)
}
