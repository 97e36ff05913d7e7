package editor

import (
	"context"
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// QuestionDraft is what the creation dialog collects. Position comes
// separately, from the add node the operator clicked.
type QuestionDraft struct {
	Text           string
	MultipleChoice bool
	MultiSelect    bool
	Options        []domain.Option
	Status         domain.QuestionStatus
}

// AddQuestion creates a question at the given insertion point. The
// point comes from a compiled add node, so the position is free by
// construction; a stale point (another session wrote meanwhile) is
// rejected rather than silently renumbering the step.
func (s *Session) AddQuestion(ctx context.Context, at flowgraph.InsertPoint, draft QuestionDraft) (created domain.Question, err error) {
	defer func() { s.metrics.RecordMutation("add_question", err) }()

	if err = s.begin(); err != nil {
		return domain.Question{}, err
	}
	defer s.end()

	for _, q := range s.questions {
		if !q.Deleted && q.Step == at.Step && q.Order == at.Order {
			return domain.Question{}, fmt.Errorf("position step %d order %d is already occupied", at.Step, at.Order)
		}
	}

	status := draft.Status
	if status == "" {
		status = domain.StatusActive
	}
	q := domain.Question{
		ID:             s.newID(),
		Step:           at.Step,
		Order:          at.Order,
		Text:           draft.Text,
		MultipleChoice: draft.MultipleChoice,
		MultiSelect:    draft.MultiSelect,
		Options:        draft.Options,
		Status:         status,
	}

	created, err = s.store.Create(ctx, s.state.Category, q)
	if err != nil {
		err = fmt.Errorf("creating question: %w", err)
		s.logger.Error("create failed", "category", s.state.Category, "err", err)
		return domain.Question{}, err
	}

	s.questions = append(s.questions, created.Clone())
	domain.SortQuestions(s.questions)
	return created, nil
}

// EditQuestion applies a partial update to a question's own fields.
func (s *Session) EditQuestion(ctx context.Context, id string, patch ports.QuestionPatch) (updated domain.Question, err error) {
	defer func() { s.metrics.RecordMutation("edit_question", err) }()

	if err = s.begin(); err != nil {
		return domain.Question{}, err
	}
	defer s.end()

	i, ok := s.find(id)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	updated, err = s.store.Update(ctx, s.state.Category, id, patch)
	if err != nil {
		err = fmt.Errorf("updating question %s: %w", id, err)
		s.logger.Error("update failed", "question", id, "err", err)
		return domain.Question{}, err
	}

	s.questions[i] = updated.Clone()
	domain.SortQuestions(s.questions)
	return updated, nil
}

// DeleteQuestion soft-deletes a question. The record survives in the
// store and in the local list; it just stops compiling into the graph
// and being offered as a condition source.
func (s *Session) DeleteQuestion(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.RecordMutation("delete_question", err) }()

	if err = s.begin(); err != nil {
		return err
	}
	defer s.end()

	i, ok := s.find(id)
	if !ok {
		return domain.ErrQuestionNotFound
	}

	if err = s.store.SoftDelete(ctx, s.state.Category, id); err != nil {
		err = fmt.Errorf("deleting question %s: %w", id, err)
		s.logger.Error("delete failed", "question", id, "err", err)
		return err
	}

	s.questions[i].Deleted = true
	return nil
}

// SetCondition writes the dialog's result into the target question's
// visibility rule and persists it. The dialog result is validated
// first; nothing reaches the store on a validation failure.
func (s *Session) SetCondition(ctx context.Context, targetID string, result DialogResult) (updated domain.Question, err error) {
	defer func() { s.metrics.RecordMutation("set_condition", err) }()

	if err = s.begin(); err != nil {
		return domain.Question{}, err
	}
	defer s.end()

	i, ok := s.find(targetID)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	if err = s.validateDialog(s.questions[i], result); err != nil {
		return domain.Question{}, err
	}

	rule := result.toConditional()
	updated, err = s.store.Update(ctx, s.state.Category, targetID, ports.QuestionPatch{Conditional: rule})
	if err != nil {
		err = fmt.Errorf("saving condition on %s: %w", targetID, err)
		s.logger.Error("condition save failed", "question", targetID, "err", err)
		return domain.Question{}, err
	}

	s.questions[i] = updated.Clone()
	return updated, nil
}

// RemoveCondition detaches the visibility rule from a question.
func (s *Session) RemoveCondition(ctx context.Context, targetID string) (err error) {
	defer func() { s.metrics.RecordMutation("remove_condition", err) }()

	if err = s.begin(); err != nil {
		return err
	}
	defer s.end()

	i, ok := s.find(targetID)
	if !ok {
		return domain.ErrQuestionNotFound
	}

	updated, err := s.store.Update(ctx, s.state.Category, targetID, ports.QuestionPatch{ClearConditional: true})
	if err != nil {
		err = fmt.Errorf("removing condition on %s: %w", targetID, err)
		s.logger.Error("condition remove failed", "question", targetID, "err", err)
		return err
	}

	s.questions[i] = updated.Clone()
	return nil
}

// ConnectDrag handles a drag from one question node onto another: it
// is exactly the condition dialog for the target, pre-seeded with the
// dragged source. The caller opens the dialog with the returned seed
// and saves through SetCondition.
func (s *Session) ConnectDrag(sourceID, targetID string) (DialogSeed, error) {
	if !s.state.Loaded {
		return DialogSeed{}, domain.ErrNotLoaded
	}

	ti, ok := s.find(targetID)
	if !ok {
		return DialogSeed{}, domain.ErrQuestionNotFound
	}
	target := s.questions[ti]

	candidates := s.candidatesFor(target)
	valid := false
	for _, c := range candidates {
		valid = valid || c.ID == sourceID
	}
	if !valid {
		return DialogSeed{}, &domain.ValidationError{Row: 0, Reason: fmt.Sprintf("question %s cannot be a condition source for %s", sourceID, targetID)}
	}

	seed := DialogSeed{
		TargetID:      targetID,
		Candidates:    candidates,
		GroupOperator: domain.OperatorAND,
		Rows: []ConditionRow{
			{SourceID: sourceID, Operator: domain.OperatorOR},
		},
	}
	if !target.Conditional.Empty() {
		// Dragging onto an already-gated question edits the existing
		// rule, with the new source appended as one more row.
		seed.GroupOperator = target.Conditional.GroupOperator
		seed.Rows = nil
		for _, c := range target.Conditional.Conditions {
			seed.Rows = append(seed.Rows, ConditionRow{SourceID: c.SourceID, Operator: c.Operator, Values: c.Values})
		}
		seed.Rows = append(seed.Rows, ConditionRow{SourceID: sourceID, Operator: domain.OperatorOR})
	}
	return seed, nil
}

// CandidateSources returns the questions the dialog may offer as
// condition sources for the target: strictly earlier in flow order,
// not deleted, and with a non-empty selectable option set.
func (s *Session) CandidateSources(targetID string) ([]domain.Question, error) {
	if !s.state.Loaded {
		return nil, domain.ErrNotLoaded
	}
	i, ok := s.find(targetID)
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return s.candidatesFor(s.questions[i]), nil
}

func (s *Session) candidatesFor(target domain.Question) []domain.Question {
	var out []domain.Question
	for _, q := range s.questions {
		if q.Deleted || q.ID == target.ID {
			continue
		}
		if !q.Before(target) {
			continue
		}
		if len(q.OptionLabels()) == 0 {
			// "No options available": free-text questions cannot gate.
			continue
		}
		out = append(out, q.Clone())
	}
	return out
}
