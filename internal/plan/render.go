package plan

import (
	"fmt"
	"os"
	"strings"
)

// Markdown renders the plan as a Markdown document.
func (p *Plan) Markdown() string {
	var b strings.Builder

	title := "Learning Plan"
	if p.Solution != "" {
		title = fmt.Sprintf("Learning Plan for %s", p.Solution)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s for a %s-level learner. %d day(s).\n\n",
		p.GeneratedAt.UTC().Format("2006-01-02"), p.Skill, len(p.Days))

	b.WriteString("## Where You Are\n\n")
	if p.Framework != "" {
		fmt.Fprintf(&b, "- Test framework: **%s**\n", p.Framework)
	} else {
		b.WriteString("- No test framework detected yet; day one starts from zero.\n")
	}
	fmt.Fprintf(&b, "- Class-level test coverage: **%.0f%%**\n", p.Coverage)
	fmt.Fprintf(&b, "- Test methods found: **%d**\n", p.TestMethods)
	if len(p.UntestedTop) > 0 {
		fmt.Fprintf(&b, "- Most pressing untested classes: %s\n", codeList(p.UntestedTop))
	}
	if !p.HasTestProj {
		b.WriteString("- No test project exists; run `testlens scaffold` before day one.\n")
	}
	b.WriteString("\n")

	for _, day := range p.Days {
		fmt.Fprintf(&b, "## Day %d: %s\n\n", day.Number, day.Title)
		fmt.Fprintf(&b, "%s\n\n", day.Summary)

		b.WriteString("### Objectives\n\n")
		for _, obj := range day.Objectives {
			fmt.Fprintf(&b, "- [ ] %s\n", obj)
		}
		b.WriteString("\n### Exercise\n\n")
		for _, ex := range day.Exercises {
			fmt.Fprintf(&b, "- %s\n", ex)
		}
		fmt.Fprintf(&b, "\n> %s\n\n", day.Milestone)
	}

	b.WriteString("---\n\n")
	b.WriteString("Re-run `testlens analyze` at the end of the plan and compare snapshots with `testlens status`.\n")
	return b.String()
}

// WriteFile renders the plan and writes it to path.
func (p *Plan) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(p.Markdown()), 0644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
