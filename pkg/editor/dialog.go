package editor

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ConditionRow is one row of the condition dialog: a source question,
// a match operator, and the expected answer values.
type ConditionRow struct {
	SourceID string          `json:"source_question_id"`
	Operator domain.Operator `json:"operator"`
	Values   []string        `json:"values"`
}

// DialogResult is what the dialog hands back on save: one or more
// condition rows plus the single group operator combining them.
type DialogResult struct {
	Rows          []ConditionRow  `json:"conditions"`
	GroupOperator domain.Operator `json:"group_operator"`
}

// DialogSeed pre-fills the condition dialog when it opens: the rule
// being edited (or a fresh row from a drag) plus the candidate source
// questions the operator may pick from.
type DialogSeed struct {
	TargetID      string            `json:"target_question_id"`
	Rows          []ConditionRow    `json:"conditions"`
	GroupOperator domain.Operator   `json:"group_operator"`
	Candidates    []domain.Question `json:"candidates"`
}

func (r DialogResult) toConditional() *domain.ConditionalDisplay {
	cd := &domain.ConditionalDisplay{
		GroupOperator: r.GroupOperator,
		Conditions:    make([]domain.Condition, 0, len(r.Rows)),
	}
	if !cd.GroupOperator.Valid() {
		cd.GroupOperator = domain.OperatorAND
	}
	for _, row := range r.Rows {
		op := row.Operator
		if !op.Valid() {
			op = domain.OperatorOR
		}
		values := make([]string, len(row.Values))
		copy(values, row.Values)
		cd.Conditions = append(cd.Conditions, domain.Condition{
			SourceID: row.SourceID,
			Operator: op,
			Values:   values,
		})
	}
	return cd
}

// validateDialog gates the save callback. Every row needs a source
// question and at least one expected value; the source must be one of
// the candidates the dialog was allowed to offer in the first place.
func (s *Session) validateDialog(target domain.Question, result DialogResult) error {
	if len(result.Rows) == 0 {
		return &domain.ValidationError{Row: 0, Reason: "at least one condition is required"}
	}

	candidates := s.candidatesFor(target)
	allowed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		allowed[c.ID] = true
	}

	for i, row := range result.Rows {
		if row.SourceID == "" {
			return &domain.ValidationError{Row: i, Reason: "no source question selected"}
		}
		if len(row.Values) == 0 {
			return &domain.ValidationError{Row: i, Reason: "no answer values selected"}
		}
		if !allowed[row.SourceID] {
			return &domain.ValidationError{Row: i, Reason: fmt.Sprintf("question %s is not an eligible source", row.SourceID)}
		}
	}
	return nil
}
