package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ListOptions tunes a question listing.
type ListOptions struct {
	// IncludeInactive also returns status=inactive questions. Deleted
	// records are never returned, regardless.
	IncludeInactive bool
}

// QuestionPatch carries a partial update. Nil pointer fields are left
// untouched. Conditional and ClearConditional cover the two directions
// of the visibility rule: set/replace versus detach.
type QuestionPatch struct {
	Text           *string
	Step           *int
	Order          *int
	MultipleChoice *bool
	MultiSelect    *bool
	Options        *[]domain.Option
	Status         *domain.QuestionStatus

	Conditional      *domain.ConditionalDisplay
	ClearConditional bool
}

// Apply folds the patch into a question.
func (p QuestionPatch) Apply(q *domain.Question) {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Step != nil {
		q.Step = *p.Step
	}
	if p.Order != nil {
		q.Order = *p.Order
	}
	if p.MultipleChoice != nil {
		q.MultipleChoice = *p.MultipleChoice
	}
	if p.MultiSelect != nil {
		q.MultiSelect = *p.MultiSelect
	}
	if p.Options != nil {
		opts := make([]domain.Option, len(*p.Options))
		copy(opts, *p.Options)
		q.Options = opts
	}
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.ClearConditional {
		q.Conditional = nil
	} else if p.Conditional != nil {
		q.Conditional = p.Conditional.Clone()
	}
}

// QuestionStore is the persistence port for question records. Records
// are only ever soft-deleted; the flag preserves referential history
// for answers already collected against a question.
//
// List does not guarantee any ordering; callers sort by step and
// in-step order themselves.
type QuestionStore interface {
	// List returns the non-deleted questions of a category.
	List(ctx context.Context, categoryID string, opts ListOptions) ([]domain.Question, error)

	// Create persists a new question and returns the stored record.
	Create(ctx context.Context, categoryID string, q domain.Question) (domain.Question, error)

	// Update applies a partial change and returns the updated record.
	// Returns domain.ErrQuestionNotFound for unknown ids.
	Update(ctx context.Context, categoryID, id string, patch QuestionPatch) (domain.Question, error)

	// SoftDelete flags the question as deleted. It is never removed.
	SoftDelete(ctx context.Context, categoryID, id string) error
}
