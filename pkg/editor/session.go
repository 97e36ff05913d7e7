package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// State is the explicit, serializable editor state. Operations read
// and advance it instead of relying on ambient UI globals, which keeps
// the orchestration testable without a rendering layer.
type State struct {
	Category     string `json:"category"`
	Loaded       bool   `json:"loaded"`
	Busy         bool   `json:"busy"`
	ShowInactive bool   `json:"show_inactive"`
}

// Session orchestrates one operator editing one category's questions.
// It holds the in-memory question list, pushes every mutation through
// the store port, and recompiles the graph in full afterwards. The
// model assumes a single session per category; concurrent sessions are
// not detected and the last write wins at the store.
//
// Session is not safe for concurrent use. The Busy flag rejects
// re-entrant mutations from the single driving UI loop; it is not a
// lock.
type Session struct {
	store   ports.QuestionStore
	logger  *slog.Logger
	metrics *observability.Metrics
	newID   func() string

	state     State
	questions []domain.Question
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets a structured logger for the session.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithShowInactive starts the session with inactive questions visible.
func WithShowInactive(show bool) SessionOption {
	return func(s *Session) {
		s.state.ShowInactive = show
	}
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *observability.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithIDGenerator overrides how ids for new questions are minted.
// The default is a random UUID.
func WithIDGenerator(gen func() string) SessionOption {
	return func(s *Session) {
		s.newID = gen
	}
}

// NewSession creates a session for one category. Call Load before any
// other operation.
func NewSession(store ports.QuestionStore, category string, opts ...SessionOption) *Session {
	s := &Session{
		store:  store,
		logger: slog.Default(),
		newID:  uuid.NewString,
		state:  State{Category: category},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the editor state.
func (s *Session) State() State {
	return s.state
}

// Load fetches the category's questions. It always asks the store for
// inactive records too, so toggling their visibility later is a local
// recompile, not a refetch.
func (s *Session) Load(ctx context.Context) error {
	questions, err := s.store.List(ctx, s.state.Category, ports.ListOptions{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("loading questions for %q: %w", s.state.Category, err)
	}

	domain.SortQuestions(questions)
	s.questions = questions
	s.state.Loaded = true
	s.logger.Debug("questions loaded", "category", s.state.Category, "count", len(questions))
	return nil
}

// Questions returns a copy of the in-memory question list, in flow
// order.
func (s *Session) Questions() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// SetShowInactive toggles whether inactive questions compile into the
// graph. Unrelated node ids do not churn when this flips.
func (s *Session) SetShowInactive(show bool) {
	s.state.ShowInactive = show
}

// Graph compiles the current question list.
func (s *Session) Graph() (flowgraph.Graph, error) {
	if !s.state.Loaded {
		return flowgraph.Graph{}, domain.ErrNotLoaded
	}

	start := time.Now()
	g := flowgraph.Compile(s.questions, flowgraph.WithInactive(s.state.ShowInactive))
	s.metrics.ObserveCompile(time.Since(start))
	return g, nil
}

// begin gates a mutation: the session must be loaded and idle.
func (s *Session) begin() error {
	if !s.state.Loaded {
		return domain.ErrNotLoaded
	}
	if s.state.Busy {
		return domain.ErrMutationInFlight
	}
	s.state.Busy = true
	return nil
}

func (s *Session) end() {
	s.state.Busy = false
}

func (s *Session) find(id string) (int, bool) {
	for i, q := range s.questions {
		if q.ID == id {
			return i, true
		}
	}
	return 0, false
}
