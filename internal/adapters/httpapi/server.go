// Package httpapi exposes the assistant over HTTP: session lifecycle,
// message turns, and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// Assistant is the facade surface the HTTP layer needs.
type Assistant interface {
	Start(ctx context.Context, sessionID string, traveler domain.Traveler) (*domain.Session, error)
	Send(ctx context.Context, sessionID, text string) ([]domain.Message, error)
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
	Sessions(ctx context.Context) ([]string, error)
	End(ctx context.Context, sessionID string) error
}

// Server routes HTTP requests to the assistant.
type Server struct {
	assistant Assistant
	logger    *slog.Logger
	gatherer  prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts /metrics serving the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler builds the HTTP handler for the assistant.
func NewHandler(assistant Assistant, opts ...Option) http.Handler {
	s := &Server{
		assistant: assistant,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.startSession)
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/messages", s.sendMessage)
		})
	})
	return r
}

type startRequest struct {
	SessionID string          `json:"session_id,omitempty"`
	Traveler  domain.Traveler `json:"traveler"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Messages []domain.Message `json:"messages"`
}

type sessionsResponse struct {
	Sessions []string `json:"sessions"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Traveler.Name == "" {
		http.Error(w, "traveler name is required", http.StatusBadRequest)
		return
	}

	sess, err := s.assistant.Start(r.Context(), req.SessionID, req.Traveler)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.assistant.Sessions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, sessionsResponse{Sessions: ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.assistant.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	msgs, err := s.assistant.Send(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Messages: msgs})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"err", err)
	http.Error(w, err.Error(), status)
}
