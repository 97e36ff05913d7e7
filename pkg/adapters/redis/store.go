// Package redis provides a QuestionStore backed by Redis. Each
// question is one JSON value; a per-category set indexes the ids so a
// category can be listed without scanning the keyspace.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Store implements ports.QuestionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for question records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "espalier:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) questionKey(categoryID, id string) string {
	return s.prefix + "question:" + categoryID + ":" + id
}

func (s *Store) indexKey(categoryID string) string {
	return s.prefix + "category:" + categoryID + ":questions"
}

// List returns the non-deleted questions of a category.
func (s *Store) List(ctx context.Context, categoryID string, opts ports.ListOptions) ([]domain.Question, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(categoryID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read category index: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.questionKey(categoryID, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	out := make([]domain.Question, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip rather than fail the
			// whole listing.
			continue
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question: %w", err)
		}
		if q.Deleted {
			continue
		}
		if q.Status == domain.StatusInactive && !opts.IncludeInactive {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// Create persists a new question and indexes it.
func (s *Store) Create(ctx context.Context, categoryID string, q domain.Question) (domain.Question, error) {
	if err := s.save(ctx, categoryID, q); err != nil {
		return domain.Question{}, err
	}
	return q.Clone(), nil
}

// Update applies a partial change to a stored question.
func (s *Store) Update(ctx context.Context, categoryID, id string, patch ports.QuestionPatch) (domain.Question, error) {
	q, err := s.load(ctx, categoryID, id)
	if err != nil {
		return domain.Question{}, err
	}

	patch.Apply(&q)
	if err := s.save(ctx, categoryID, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// SoftDelete flags the question as deleted; record and index entry stay.
func (s *Store) SoftDelete(ctx context.Context, categoryID, id string) error {
	q, err := s.load(ctx, categoryID, id)
	if err != nil {
		return err
	}
	q.Deleted = true
	return s.save(ctx, categoryID, q)
}

func (s *Store) load(ctx context.Context, categoryID, id string) (domain.Question, error) {
	raw, err := s.client.Get(ctx, s.questionKey(categoryID, id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, fmt.Errorf("failed to get question: %w", err)
	}

	var q domain.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Question{}, fmt.Errorf("failed to unmarshal question: %w", err)
	}
	return q, nil
}

func (s *Store) save(ctx context.Context, categoryID string, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal question: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.questionKey(categoryID, q.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(categoryID), q.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}
