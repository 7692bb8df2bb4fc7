package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testlens/internal/analysis"
	"testlens/internal/world"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Workspace:   "/work/fujiq",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Solution:    "Fujiq",
		Stack:       analysis.StackInfo{TestFramework: "xunit", HasMoq: true},
		Topics:      []string{"fundamentals", "assertions", "mocking", "coverage"},
		TestMethods: 12,
		Classes: []analysis.ClassInfo{
			{
				Name:     "UserService",
				Ref:      "cs:Core/UserService.cs:UserService",
				Score:    60,
				CtorDeps: []world.Parameter{{Type: "IUserRepository", Name: "repository"}},
				Smells:   []string{"direct system clock access"},
			},
			{
				Name:     "OrderService",
				Ref:      "cs:Core/OrderService.cs:OrderService",
				Score:    90,
				HasTests: true,
			},
		},
	}
}

func TestGenerateClampsDays(t *testing.T) {
	report := sampleReport()

	assert.Len(t, Generate(report, Options{Days: 0}).Days, MinDays)
	assert.Len(t, Generate(report, Options{Days: -3}).Days, MinDays)
	assert.Len(t, Generate(report, Options{Days: 99}).Days, MaxDays)
	assert.Len(t, Generate(report, Options{Days: 5}).Days, 5)
}

func TestGenerateUnknownSkillFallsBack(t *testing.T) {
	p := Generate(sampleReport(), Options{Days: 3, Skill: "wizard"})
	assert.Equal(t, SkillBeginner, p.Skill)
}

func TestGenerateDeterministic(t *testing.T) {
	report := sampleReport()
	opts := Options{Days: 7, Skill: SkillIntermediate}

	first := Generate(report, opts)
	second := Generate(report, opts)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Markdown(), second.Markdown())
}

func TestGenerateCoversAllTopics(t *testing.T) {
	p := Generate(sampleReport(), Options{Days: 8, Skill: SkillBeginner})

	seen := map[string]bool{}
	for _, day := range p.Days {
		seen[day.TopicKey] = true
	}
	assert.True(t, seen["fundamentals"])
	assert.True(t, seen["assertions"])
	assert.True(t, seen["mocking"])
	assert.True(t, seen["coverage"])
}

func TestGenerateDaysOrderedAndNumbered(t *testing.T) {
	p := Generate(sampleReport(), Options{Days: 6, Skill: SkillBeginner})

	require.Len(t, p.Days, 6)
	for i, day := range p.Days {
		assert.Equal(t, i+1, day.Number)
		assert.NotEmpty(t, day.Objectives)
		assert.NotEmpty(t, day.Exercises)
	}
}

func TestExercisesNameRealClasses(t *testing.T) {
	p := Generate(sampleReport(), Options{Days: 2, Skill: SkillBeginner})

	found := false
	for _, day := range p.Days {
		for _, ex := range day.Exercises {
			if strings.Contains(ex, "UserService") {
				found = true
			}
		}
	}
	assert.True(t, found, "expected an exercise to reference UserService")
}

func TestGenerateEmptyReport(t *testing.T) {
	report := &analysis.Report{GeneratedAt: time.Now().UTC()}

	p := Generate(report, Options{Days: 2, Skill: SkillBeginner})
	require.Len(t, p.Days, 2)
	for _, day := range p.Days {
		assert.NotEmpty(t, day.Exercises)
	}
}

func TestMarkdownRendering(t *testing.T) {
	p := Generate(sampleReport(), Options{Days: 3, Skill: SkillAdvanced})
	md := p.Markdown()

	assert.Contains(t, md, "# Learning Plan for Fujiq")
	assert.Contains(t, md, "Generated 2026-08-01 for a advanced-level learner")
	assert.Contains(t, md, "## Day 1:")
	assert.Contains(t, md, "## Day 3:")
	assert.Contains(t, md, "- [ ] ")
	assert.Contains(t, md, "Test framework: **xunit**")
	assert.Contains(t, md, "`UserService`")
	assert.Contains(t, md, "tracker update --day 1")
}

func TestParseSkill(t *testing.T) {
	assert.Equal(t, SkillBeginner, ParseSkill(""))
	assert.Equal(t, SkillBeginner, ParseSkill("novice"))
	assert.Equal(t, SkillIntermediate, ParseSkill("Intermediate"))
	assert.Equal(t, SkillIntermediate, ParseSkill("i"))
	assert.Equal(t, SkillAdvanced, ParseSkill(" advanced "))
	assert.Equal(t, SkillAdvanced, ParseSkill("expert"))
}
