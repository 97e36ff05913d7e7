// Package visibility decides whether a question is shown to the
// customer, given the answers collected so far. Evaluation is a pure
// function of the question's visibility rule and the answer map; it is
// recomputed in full on every answer change (tens of questions per
// category, so there is nothing worth caching).
package visibility

import (
	"github.com/espalier-dev/espalier/pkg/domain"
)

// IsVisible reports whether the question should be shown for the given
// answers. A question without a rule (or with a rule that degraded to
// empty on load) is always visible.
func IsVisible(q domain.Question, answers domain.Answers) bool {
	rule := q.Conditional
	if rule.Empty() {
		return true
	}

	switch rule.GroupOperator {
	case domain.OperatorOR:
		for _, c := range rule.Conditions {
			if conditionMet(c, answers) {
				return true
			}
		}
		return false
	default:
		// AND, and the defensive default for an unknown operator: the
		// stricter reading hides rather than leaks a gated question.
		for _, c := range rule.Conditions {
			if !conditionMet(c, answers) {
				return false
			}
		}
		return true
	}
}

// conditionMet evaluates a single condition against the answers. A
// condition can never be satisfied by an unanswered source question,
// regardless of operator. That also covers dangling references: a
// source that was deleted or moved later in the flow simply never has
// an answer by the time the condition is checked.
func conditionMet(c domain.Condition, answers domain.Answers) bool {
	value, answered := answers[c.SourceID]
	if !answered {
		return false
	}

	selected := domain.SelectedLabels(value)
	if len(selected) == 0 {
		return false
	}

	if c.Operator == domain.OperatorAND {
		for _, want := range c.Values {
			if !selected[want] {
				return false
			}
		}
		return len(c.Values) > 0
	}

	for _, want := range c.Values {
		if selected[want] {
			return true
		}
	}
	return false
}
