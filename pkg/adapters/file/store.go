// Package file provides a QuestionStore backed by one YAML document
// per category on the local filesystem. It suits single-operator
// editing and keeps categories diffable under version control.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Store implements ports.QuestionStore on the filesystem.
// A process-local mutex serializes writers; the model assumes a single
// editor session per category, so no cross-process locking is done.
type Store struct {
	BasePath string
	mu       sync.Mutex
}

// categoryDoc is the on-disk document shape.
type categoryDoc struct {
	Questions []domain.Question `yaml:"questions"`
}

// New creates a Store rooted at basePath. If basePath is empty, it
// defaults to ".espalier/categories".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".espalier", "categories")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(categoryID string) string {
	return filepath.Join(s.BasePath, categoryID+".yaml")
}

// List returns the non-deleted questions of a category. A missing file
// is an empty category, not an error.
func (s *Store) List(ctx context.Context, categoryID string, opts ports.ListOptions) ([]domain.Question, error) {
	doc, err := s.read(categoryID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
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

// Create appends a new question and rewrites the category file.
func (s *Store) Create(ctx context.Context, categoryID string, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(categoryID)
	if err != nil {
		return domain.Question{}, err
	}
	doc.Questions = append(doc.Questions, q.Clone())

	if err := s.write(categoryID, doc); err != nil {
		return domain.Question{}, err
	}
	return q.Clone(), nil
}

// Update applies a partial change and rewrites the category file.
func (s *Store) Update(ctx context.Context, categoryID, id string, patch ports.QuestionPatch) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(categoryID)
	if err != nil {
		return domain.Question{}, err
	}

	for i := range doc.Questions {
		if doc.Questions[i].ID != id {
			continue
		}
		updated := doc.Questions[i].Clone()
		patch.Apply(&updated)
		doc.Questions[i] = updated

		if err := s.write(categoryID, doc); err != nil {
			return domain.Question{}, err
		}
		return updated.Clone(), nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// SoftDelete flags the question as deleted; the record stays on disk.
func (s *Store) SoftDelete(ctx context.Context, categoryID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(categoryID)
	if err != nil {
		return err
	}

	for i := range doc.Questions {
		if doc.Questions[i].ID == id {
			doc.Questions[i].Deleted = true
			return s.write(categoryID, doc)
		}
	}
	return domain.ErrQuestionNotFound
}

func (s *Store) read(categoryID string) (*categoryDoc, error) {
	data, err := os.ReadFile(s.path(categoryID))
	if err != nil {
		if os.IsNotExist(err) {
			return &categoryDoc{}, nil
		}
		return nil, fmt.Errorf("failed to read category file: %w", err)
	}

	var doc categoryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse category file: %w", err)
	}
	return &doc, nil
}

// write persists the document atomically: temp file, fsync, rename.
func (s *Store) write(categoryID string, doc *categoryDoc) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure category directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+categoryID+"-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(categoryID)); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}
