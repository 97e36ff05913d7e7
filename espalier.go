package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/internal/validator"
	"github.com/espalier-dev/espalier/pkg/adapters/file"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/editor"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/visibility"
)

// Workbench is the high-level entry point for the Espalier library.
// It wraps a question store and provides the compiled graph, the
// visibility evaluator and editor sessions behind one simplified API.
type Workbench struct {
	store   ports.QuestionStore
	logger  *slog.Logger
	metrics *observability.Metrics
	Name    string
}

// Option defines a functional option for configuring the Workbench.
type Option func(*Workbench)

// WithStore injects a custom QuestionStore, bypassing the default file
// adapter initialization.
func WithStore(store ports.QuestionStore) Option {
	return func(w *Workbench) {
		w.store = store
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workbench) {
		w.logger = logger
	}
}

// WithMetrics attaches Prometheus instruments to every session the
// workbench opens.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Workbench) {
		w.metrics = m
	}
}

// New initializes a new Workbench.
// By default it reads and writes category files under dataPath.
// If the WithStore option is provided, dataPath can be empty and the
// file adapter is skipped.
func New(dataPath string, opts ...Option) (*Workbench, error) {
	w := &Workbench{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.store == nil {
		if dataPath == "" {
			return nil, fmt.Errorf("dataPath is required when no custom store is provided")
		}
		absPath, err := filepath.Abs(dataPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		w.Name = filepath.Base(absPath)
		w.store = file.New(absPath)
	}

	return w, nil
}

// Store exposes the underlying question store, for wiring the HTTP
// adapter or running the contract suite against a configured backend.
func (w *Workbench) Store() ports.QuestionStore {
	return w.store
}

// Session opens a loaded editor session for one category.
func (w *Workbench) Session(ctx context.Context, category string, showInactive bool) (*editor.Session, error) {
	session := editor.NewSession(w.store, category,
		editor.WithLogger(w.logger),
		editor.WithShowInactive(showInactive),
		editor.WithMetrics(w.metrics),
	)
	if err := session.Load(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Questions lists the active questions of a category in flow order.
func (w *Workbench) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	questions, err := w.store.List(ctx, category, ports.ListOptions{})
	if err != nil {
		return nil, err
	}
	domain.SortQuestions(questions)
	return questions, nil
}

// Graph compiles the category's flow graph.
func (w *Workbench) Graph(ctx context.Context, category string) (flowgraph.Graph, error) {
	session, err := w.Session(ctx, category, false)
	if err != nil {
		return flowgraph.Graph{}, err
	}
	return session.Graph()
}

// Mermaid renders the category's flow graph as Mermaid flowchart
// syntax. When answers is non-nil the graph is overlaid with the
// visibility each question would have for that answer set.
func (w *Workbench) Mermaid(ctx context.Context, category string, answers domain.Answers) (string, error) {
	g, err := w.Graph(ctx, category)
	if err != nil {
		return "", err
	}

	var overlay *graph.GraphOverlay
	if answers != nil {
		visible, err := w.Visible(ctx, category, answers)
		if err != nil {
			return "", err
		}
		overlay = &graph.GraphOverlay{}
		for id, on := range visible {
			if on {
				overlay.VisibleNodes = append(overlay.VisibleNodes, id)
			}
		}
	}

	return graph.GenerateMermaid(g, overlay), nil
}

// Visible evaluates every question of the category against one answer
// set, as the runtime quote form does on each answer change.
func (w *Workbench) Visible(ctx context.Context, category string, answers domain.Answers) (map[string]bool, error) {
	questions, err := w.Questions(ctx, category)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(questions))
	for _, q := range questions {
		visible[q.ID] = visibility.IsVisible(q, answers)
	}
	return visible, nil
}

// Validate checks the category's questions for integrity problems.
func (w *Workbench) Validate(ctx context.Context, category string) error {
	questions, err := w.store.List(ctx, category, ports.ListOptions{IncludeInactive: true})
	if err != nil {
		return err
	}
	return validator.ValidateFlow(questions)
}

// Preview builds a markdown walkthrough of the category for the given
// answers. Rendering it for a terminal is the caller's concern.
func (w *Workbench) Preview(ctx context.Context, category string, answers domain.Answers) (string, error) {
	questions, err := w.store.List(ctx, category, ports.ListOptions{})
	if err != nil {
		return "", err
	}
	return tui.PreviewMarkdown(category, questions, answers), nil
}
