package tui

import (
	"strings"
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
)

func TestPreviewMarkdown(t *testing.T) {
	questions := []domain.Question{
		{ID: "q2", Step: 2, Order: 1, Text: "Boiler type?", Status: domain.StatusActive,
			Conditional: &domain.ConditionalDisplay{
				GroupOperator: domain.OperatorAND,
				Conditions: []domain.Condition{
					{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
				},
			}},
		{ID: "q1", Step: 1, Order: 1, Text: "Fuel?", MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Gas"}, {Text: "Electric"}}},
		{ID: "q3", Step: 1, Order: 2, Text: "Old question", Status: domain.StatusActive, Deleted: true},
	}

	out := PreviewMarkdown("boilers", questions, domain.Answers{"q1": "Electric"})

	if !strings.Contains(out, "# boilers") {
		t.Errorf("expected category heading, got:\n%s", out)
	}
	if strings.Index(out, "Fuel?") > strings.Index(out, "Boiler type?") {
		t.Errorf("expected step order, got:\n%s", out)
	}
	if !strings.Contains(out, "~~Boiler type?~~") {
		t.Errorf("expected hidden question struck through, got:\n%s", out)
	}
	if !strings.Contains(out, "q1 OR [Gas]") {
		t.Errorf("expected rule summary, got:\n%s", out)
	}
	if strings.Contains(out, "Old question") {
		t.Errorf("deleted question must not render, got:\n%s", out)
	}
	if !strings.Contains(out, "  - Electric") {
		t.Errorf("expected option list, got:\n%s", out)
	}
}

func TestPreviewMarkdown_VisibleWhenAnswered(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Step: 1, Order: 1, Text: "Fuel?", MultipleChoice: true, Status: domain.StatusActive,
			Options: []domain.Option{{Text: "Gas"}}},
		{ID: "q2", Step: 1, Order: 2, Text: "Boiler type?", Status: domain.StatusActive,
			Conditional: &domain.ConditionalDisplay{
				GroupOperator: domain.OperatorAND,
				Conditions: []domain.Condition{
					{SourceID: "q1", Operator: domain.OperatorOR, Values: []string{"Gas"}},
				},
			}},
	}

	out := PreviewMarkdown("boilers", questions, domain.Answers{"q1": "Gas"})
	if !strings.Contains(out, "**Boiler type?**") {
		t.Errorf("expected gated question visible when rule matches, got:\n%s", out)
	}
}
