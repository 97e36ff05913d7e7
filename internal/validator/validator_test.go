package validator

import (
	"strings"
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
)

func gasQuestion() domain.Question {
	return domain.Question{
		ID: "q1", Step: 1, Order: 1, Text: "Fuel?", MultipleChoice: true,
		Options: []domain.Option{{Text: "Gas"}, {Text: "Electric"}},
		Status:  domain.StatusActive,
	}
}

func gated(id string, step, order int, sourceID string, values ...string) domain.Question {
	return domain.Question{
		ID: id, Step: step, Order: order, Text: id, Status: domain.StatusActive,
		Conditional: &domain.ConditionalDisplay{
			GroupOperator: domain.OperatorAND,
			Conditions: []domain.Condition{
				{SourceID: sourceID, Operator: domain.OperatorOR, Values: values},
			},
		},
	}
}

func TestValidateFlow_CleanFlow(t *testing.T) {
	questions := []domain.Question{
		gasQuestion(),
		gated("q2", 2, 1, "q1", "Gas"),
	}
	if err := ValidateFlow(questions); err != nil {
		t.Fatalf("expected clean flow, got: %v", err)
	}
}

func TestValidateFlow_Problems(t *testing.T) {
	cases := []struct {
		name      string
		questions []domain.Question
		want      string
	}{
		{
			name: "duplicate position",
			questions: []domain.Question{
				gasQuestion(),
				{ID: "q2", Step: 1, Order: 1, Text: "dup", Status: domain.StatusActive},
			},
			want: "share position",
		},
		{
			name: "missing source",
			questions: []domain.Question{
				gasQuestion(),
				gated("q2", 2, 1, "ghost", "Gas"),
			},
			want: "missing question 'ghost'",
		},
		{
			name: "forward dependency",
			questions: []domain.Question{
				gasQuestion(),
				gated("q2", 1, 2, "q3", "Yes"),
				{ID: "q3", Step: 2, Order: 1, Text: "Later?", MultipleChoice: true,
					Options: []domain.Option{{Text: "Yes"}}, Status: domain.StatusActive},
			},
			want: "does not come earlier",
		},
		{
			name: "empty values",
			questions: []domain.Question{
				gasQuestion(),
				gated("q2", 2, 1, "q1"),
			},
			want: "no answer values",
		},
		{
			name: "unknown answer value",
			questions: []domain.Question{
				gasQuestion(),
				gated("q2", 2, 1, "q1", "Oil"),
			},
			want: "does not offer",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFlow(tc.questions)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in error, got: %v", tc.want, err)
			}
		})
	}
}

func TestValidateFlow_IgnoresDeleted(t *testing.T) {
	questions := []domain.Question{
		gasQuestion(),
		{ID: "q2", Step: 1, Order: 1, Text: "dup", Status: domain.StatusActive, Deleted: true},
	}
	if err := ValidateFlow(questions); err != nil {
		t.Fatalf("deleted questions must not count, got: %v", err)
	}

	// A rule pointing at a deleted question is a dangling reference.
	questions = []domain.Question{
		gasQuestion(),
		{ID: "q3", Step: 1, Order: 2, Text: "gone", Status: domain.StatusActive, Deleted: true,
			MultipleChoice: true, Options: []domain.Option{{Text: "Yes"}}},
		gated("q4", 2, 1, "q3", "Yes"),
	}
	err := ValidateFlow(questions)
	if err == nil || !strings.Contains(err.Error(), "missing question 'q3'") {
		t.Errorf("expected dangling reference to deleted question, got: %v", err)
	}
}
