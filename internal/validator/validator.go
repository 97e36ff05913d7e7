// Package validator checks a category's questions for integrity
// problems that the editor cannot create but hand-edited or legacy
// data can: duplicate positions, rules pointing at missing or later
// questions, conditions with no values to match.
package validator

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ValidateFlow checks the questions of one category and returns an
// error listing every problem found, or nil.
func ValidateFlow(questions []domain.Question) error {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		if q.Deleted {
			continue
		}
		byID[q.ID] = q
	}

	var problems []string

	seen := make(map[[2]int]string)
	for _, q := range questions {
		if q.Deleted {
			continue
		}

		pos := [2]int{q.Step, q.Order}
		if other, ok := seen[pos]; ok {
			problems = append(problems, fmt.Sprintf("questions '%s' and '%s' share position step %d order %d", other, q.ID, q.Step, q.Order))
		} else {
			seen[pos] = q.ID
		}

		if q.Step < 1 || q.Order < 1 {
			problems = append(problems, fmt.Sprintf("question '%s' has invalid position step %d order %d", q.ID, q.Step, q.Order))
		}

		problems = append(problems, checkRule(q, byID)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

func checkRule(q domain.Question, byID map[string]domain.Question) []string {
	if q.Conditional == nil || q.Conditional.Empty() {
		return nil
	}

	var problems []string
	for i, c := range q.Conditional.Conditions {
		if c.SourceID == "" {
			problems = append(problems, fmt.Sprintf("question '%s' condition %d has no source question", q.ID, i+1))
			continue
		}

		source, ok := byID[c.SourceID]
		if !ok {
			problems = append(problems, fmt.Sprintf("question '%s' depends on missing question '%s'", q.ID, c.SourceID))
			continue
		}

		if !source.Before(q) {
			problems = append(problems, fmt.Sprintf("question '%s' depends on '%s' which does not come earlier in the flow", q.ID, c.SourceID))
		}
		if len(c.Values) == 0 {
			problems = append(problems, fmt.Sprintf("question '%s' condition on '%s' has no answer values", q.ID, c.SourceID))
		}

		labels := source.OptionLabels()
		if len(labels) == 0 {
			problems = append(problems, fmt.Sprintf("question '%s' depends on '%s' which has no selectable options", q.ID, c.SourceID))
			continue
		}
		known := make(map[string]bool, len(labels))
		for _, l := range labels {
			known[l] = true
		}
		for _, v := range c.Values {
			if !known[v] {
				problems = append(problems, fmt.Sprintf("question '%s' expects answer '%s' which '%s' does not offer", q.ID, v, c.SourceID))
			}
		}
	}
	return problems
}
