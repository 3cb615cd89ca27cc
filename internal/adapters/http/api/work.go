package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/logger"
)

// WorkHandler serves the /work routes.
type WorkHandler struct {
	deps   WorkDependencies
	logger logger.Logger
}

// NewWorkHandler creates a new work handler.
func NewWorkHandler(deps WorkDependencies) *WorkHandler {
	return &WorkHandler{deps: deps}
}

// Register mounts the work routes.
func (h *WorkHandler) Register(r chi.Router) {
	r.Route("/work", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(h.HandleList, "work_list"))
		r.Post("/", MetricsMiddleware(h.HandleCreate, "work_create"))
		r.Get("/{workId}", MetricsMiddleware(h.HandleGet, "work_get"))
		r.Patch("/{workId}/complete", MetricsMiddleware(h.HandleComplete, "work_complete"))
	})
}

// HandleList handles GET /work.
func (h *WorkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.deps.ListTasks(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /work/{workId}.
func (h *WorkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.GetTask(r.Context(), chi.URLParam(r, "workId"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type createWorkRequest struct {
	Title           string             `json:"title"`
	AssignTo        []model.Assignment `json:"assignTo"`
	Priority        string             `json:"priority"`
	Deadline        string             `json:"deadline"`
	Description     string             `json:"description"`
	XPReward        number             `json:"xpReward"`
	BonusMultiplier number             `json:"bonusMultiplier"`
}

// HandleCreate handles POST /work. Missing required fields answer 404;
// malformed values answer 400.
func (h *WorkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeKindError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || len(req.AssignTo) == 0 || strings.TrimSpace(req.Deadline) == "" {
		writeError(w, http.StatusNotFound, "missing_fields", ErrMissingFields)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	reward, whole := req.XPReward.Int()
	if !whole {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("xpReward must be a whole number"))
		return
	}
	t, err := h.deps.CreateTask(r.Context(), types.NewTask{
		Title:           req.Title,
		Description:     req.Description,
		Deadline:        deadline,
		Priority:        req.Priority,
		AssignTo:        req.AssignTo,
		XPReward:        reward,
		BonusMultiplier: req.BonusMultiplier.value,
	})
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type completeWorkRequest struct {
	CompletedBy string `json:"completedBy"`
	InternID    string `json:"internId"`
}

type completeWorkResponse struct {
	Message   string             `json:"message"`
	Work      model.Task         `json:"work"`
	XPDetails types.AwardSummary `json:"xpDetails"`
}

// HandleComplete handles PATCH /work/{workId}/complete. The body is optional.
func (h *WorkHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeWorkRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeKindError(w, err)
		return
	}
	t, summary, err := h.deps.CompleteTask(r.Context(), CallerFrom(r.Context()), chi.URLParam(r, "workId"), types.CompleteRequest{
		CompletedBy: req.CompletedBy,
		InternID:    req.InternID,
	})
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeWorkResponse{Message: "Work completed successfully", Work: t, XPDetails: summary})
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} //nolint:gochecknoglobals // read-only

// parseDeadline accepts RFC 3339 timestamps and date-only values; dates are
// taken as midnight UTC.
func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("deadline must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}
