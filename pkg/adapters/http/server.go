// Package http exposes the editor over a JSON API, for the visual
// canvas frontend. Every request works against the store directly, so
// the server itself is stateless and safe to restart at any time.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/editor"
	"github.com/espalier-dev/espalier/pkg/flowgraph"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/visibility"
)

// Server wires the editor operations to HTTP routes.
type Server struct {
	store   ports.QuestionStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics attaches Prometheus instruments and enables /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewHandler builds the chi router for the editor API.
func NewHandler(store ports.QuestionStore, opts ...Option) http.Handler {
	s := &Server{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer, promhttp.Handler(),
	))

	r.Route("/categories/{category}", func(r chi.Router) {
		r.Get("/questions", s.listQuestions)
		r.Get("/graph", s.getGraph)
		r.Post("/questions", s.createQuestion)
		r.Patch("/questions/{id}", s.updateQuestion)
		r.Delete("/questions/{id}", s.deleteQuestion)
		r.Put("/questions/{id}/condition", s.putCondition)
		r.Delete("/questions/{id}/condition", s.deleteCondition)
		r.Get("/questions/{id}/condition/sources", s.listCandidateSources)
		r.Post("/visibility", s.evaluateVisibility)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session builds a loaded editor session for the request's category.
func (s *Server) session(r *http.Request) (*editor.Session, error) {
	category := chi.URLParam(r, "category")
	showInactive := r.URL.Query().Get("show_inactive") == "true"

	session := editor.NewSession(s.store, category,
		editor.WithLogger(s.logger),
		editor.WithShowInactive(showInactive),
		editor.WithMetrics(s.metrics),
	)
	if err := session.Load(r.Context()); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, session.Questions())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := session.Graph()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, g)
}

type createQuestionRequest struct {
	Step           int             `json:"step"`
	Order          int             `json:"order"`
	Text           string          `json:"question_text"`
	MultipleChoice bool            `json:"is_multiple_choice"`
	MultiSelect    bool            `json:"allow_multiple_selections"`
	Options        []domain.Option `json:"answer_options"`
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var body createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := session.AddQuestion(r.Context(),
		flowgraph.InsertPoint{Step: body.Step, Order: body.Order},
		editor.QuestionDraft{
			Text:           body.Text,
			MultipleChoice: body.MultipleChoice,
			MultiSelect:    body.MultiSelect,
			Options:        body.Options,
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, created)
}

type updateQuestionRequest struct {
	Text           *string                `json:"question_text"`
	Step           *int                   `json:"step_number"`
	Order          *int                   `json:"display_order_in_step"`
	MultipleChoice *bool                  `json:"is_multiple_choice"`
	MultiSelect    *bool                  `json:"allow_multiple_selections"`
	Options        *[]domain.Option       `json:"answer_options"`
	Status         *domain.QuestionStatus `json:"status"`
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var body updateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	updated, err := session.EditQuestion(r.Context(), chi.URLParam(r, "id"), ports.QuestionPatch{
		Text:           body.Text,
		Step:           body.Step,
		Order:          body.Order,
		MultipleChoice: body.MultipleChoice,
		MultiSelect:    body.MultiSelect,
		Options:        body.Options,
		Status:         body.Status,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := session.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putCondition(w http.ResponseWriter, r *http.Request) {
	var body editor.DialogResult
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := session.SetCondition(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) deleteCondition(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := session.RemoveCondition(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCandidateSources(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	candidates, err := session.CandidateSources(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, candidates)
}

type visibilityRequest struct {
	Answers domain.Answers `json:"answers"`
}

// evaluateVisibility runs the evaluator for every question of the
// category against one answer set, as the runtime quote form does on
// each answer change.
func (s *Server) evaluateVisibility(w http.ResponseWriter, r *http.Request) {
	var body visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	category := chi.URLParam(r, "category")
	questions, err := s.store.List(r.Context(), category, ports.ListOptions{})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	visible := make(map[string]bool, len(questions))
	for _, q := range questions {
		visible[q.ID] = visibility.IsVisible(q, body.Answers)
	}
	s.respond(w, http.StatusOK, map[string]any{"visible": visible})
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrMutationInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
