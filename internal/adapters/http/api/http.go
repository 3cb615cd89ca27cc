// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/internxp/internal/domain/leaderboard"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
)

// CandidateDependencies covers the candidate ledger routes.
type CandidateDependencies interface {
	CreateCandidate(ctx context.Context, in types.NewCandidate) (model.Candidate, error)
	ListCandidates(ctx context.Context, query string, statuses ...model.HireStatus) ([]model.Candidate, error)
	SetPipelineStatus(ctx context.Context, caller, candidateID string, d types.HireDecision) (model.Candidate, error)
	AwardBadge(ctx context.Context, caller, candidateID string, g types.BadgeGrant) (model.Candidate, error)
	AwardXP(ctx context.Context, caller, candidateID string, g types.XPGrant) (model.Candidate, error)
	Leaderboard(ctx context.Context, q leaderboard.Query) ([]types.Entry, error)
	Certificate(ctx context.Context, candidateID, supervisor string) (types.Certificate, error)

	// SeenAndRecord reports whether an idempotency key was already used.
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// WorkDependencies covers the task routes.
type WorkDependencies interface {
	CreateTask(ctx context.Context, in types.NewTask) (model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	CompleteTask(ctx context.Context, caller, taskID string, req types.CompleteRequest) (model.Task, types.AwardSummary, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CandidateDependencies
	WorkDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	candidateHandler *CandidateHandler
	workHandler      *WorkHandler
	auth             *Authenticator
	certificateDir   string
	logger           logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, auth *Authenticator, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		candidateHandler: NewCandidateHandler(deps),
		workHandler:      NewWorkHandler(deps),
		auth:             auth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.candidateHandler.logger = s.logger.Named("candidate")
	s.workHandler.logger = s.logger.Named("work")
	return s
}

// Router builds the chi router. Everything under /candidate and /work requires
// an authenticated caller.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	if s.certificateDir != "" {
		fs := http.StripPrefix("/generated_certificates/", http.FileServer(http.Dir(s.certificateDir)))
		r.Handle("/generated_certificates/*", fs)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		s.candidateHandler.Register(r)
		s.workHandler.Register(r)
	})
	return r
}

// Register mounts the router on mux at the root.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("/", s.Router())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = errs.Message(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail logs unexpected errors and writes the status matching err's kind.
func fail(l logger.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if errs.KindOf(err) == errs.ErrInternal && l != nil {
		l.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("requestId", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
	writeKindError(w, err)
}

// writeKindError maps an error kind onto its HTTP status.
func writeKindError(w http.ResponseWriter, err error) {
	switch errs.KindOf(err) {
	case errs.ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", err)
	case errs.ErrValidation:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errs.ErrConflict:
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		if errors.Is(err, context.Canceled) {
			writeError(w, http.StatusServiceUnavailable, "canceled", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errs.WrapKind("api.decode", errs.ErrValidation, fmt.Errorf("%w: %w", ErrBadRequest, err))
	}
	return nil
}
