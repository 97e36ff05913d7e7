package tui

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/visibility"
)

// PreviewMarkdown builds a markdown walkthrough of a category flow as
// the quote form would present it for the given answers: questions
// grouped by step, hidden ones collapsed to a note explaining the rule
// that gates them.
func PreviewMarkdown(category string, questions []domain.Question, answers domain.Answers) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", category)

	sorted := make([]domain.Question, len(questions))
	copy(sorted, questions)
	domain.SortQuestions(sorted)

	step := 0
	for _, q := range sorted {
		if q.Deleted {
			continue
		}
		if q.Step != step {
			step = q.Step
			fmt.Fprintf(&sb, "## Step %d\n\n", step)
		}

		if !visibility.IsVisible(q, answers) {
			fmt.Fprintf(&sb, "- ~~%s~~ *(hidden: %s)*\n", q.Text, ruleSummary(q.Conditional))
			continue
		}

		fmt.Fprintf(&sb, "- **%s**", q.Text)
		if q.Status == domain.StatusInactive {
			sb.WriteString(" _(inactive)_")
		}
		sb.WriteString("\n")
		for _, label := range q.OptionLabels() {
			fmt.Fprintf(&sb, "  - %s\n", label)
		}
	}

	return sb.String()
}

func ruleSummary(cd *domain.ConditionalDisplay) string {
	if cd == nil || cd.Empty() {
		return "no rule"
	}
	parts := make([]string, 0, len(cd.Conditions))
	for _, c := range cd.Conditions {
		parts = append(parts, fmt.Sprintf("%s %s [%s]", c.SourceID, c.Operator, strings.Join(c.Values, ", ")))
	}
	return strings.Join(parts, fmt.Sprintf(" %s ", cd.GroupOperator))
}
