// Package memory provides an in-memory QuestionStore, used by tests
// and by the preview tooling when no backend is configured.
package memory

import (
	"context"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Store implements ports.QuestionStore in memory.
// Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	categories map[string]map[string]domain.Question
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		categories: make(map[string]map[string]domain.Question),
	}
}

// Seed loads an initial question set for a category, replacing any
// existing one.
func (s *Store) Seed(categoryID string, questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		records[q.ID] = q.Clone()
	}
	s.categories[categoryID] = records
}

// List returns the non-deleted questions of a category.
func (s *Store) List(ctx context.Context, categoryID string, opts ports.ListOptions) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.categories[categoryID]
	out := make([]domain.Question, 0, len(records))
	for _, q := range records {
		if q.Deleted {
			continue
		}
		if q.Status == domain.StatusInactive && !opts.IncludeInactive {
			continue
		}
		out = append(out, q.Clone())
	}
	return out, nil
}

// Create persists a new question.
func (s *Store) Create(ctx context.Context, categoryID string, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.categories[categoryID]
	if !ok {
		records = make(map[string]domain.Question)
		s.categories[categoryID] = records
	}
	records[q.ID] = q.Clone()
	return q.Clone(), nil
}

// Update applies a partial change.
func (s *Store) Update(ctx context.Context, categoryID, id string, patch ports.QuestionPatch) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.categories[categoryID]
	q, ok := records[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}

	updated := q.Clone()
	patch.Apply(&updated)
	records[id] = updated
	return updated.Clone(), nil
}

// SoftDelete flags the question as deleted, keeping the record.
func (s *Store) SoftDelete(ctx context.Context, categoryID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.categories[categoryID]
	q, ok := records[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.Deleted = true
	records[id] = q
	return nil
}
