package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/internxp/internal/domain/leaderboard"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/logger"
)

// IdempotencyHeader lets clients retry manual awards safely.
const IdempotencyHeader = "Idempotency-Key"

// CandidateHandler serves the /candidate routes.
type CandidateHandler struct {
	deps   CandidateDependencies
	logger logger.Logger
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(deps CandidateDependencies) *CandidateHandler {
	return &CandidateHandler{deps: deps}
}

// Register mounts the candidate routes.
func (h *CandidateHandler) Register(r chi.Router) {
	r.Route("/candidate", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(h.listBy(model.HireUndecided, false), "candidate_list"))
		r.Get("/search", MetricsMiddleware(h.listBy(model.HireUndecided, true), "candidate_search"))
		r.Get("/intern", MetricsMiddleware(h.listBy(model.HireHired, false), "intern_list"))
		r.Get("/intern/search", MetricsMiddleware(h.listBy(model.HireHired, true), "intern_search"))
		r.Post("/", MetricsMiddleware(h.HandleCreate, "candidate_create"))
		r.Patch("/selection", MetricsMiddleware(h.HandleSelection, "candidate_selection"))
		r.Patch("/badge", MetricsMiddleware(h.HandleBadge, "candidate_badge"))
		r.Patch("/award-xp", MetricsMiddleware(h.HandleAwardXP, "candidate_award_xp"))
		r.Get("/leaderboard", MetricsMiddleware(h.HandleLeaderboard, "leaderboard"))
		r.Get("/{id}/certificate", MetricsMiddleware(h.HandleCertificate, "certificate"))
	})
}

func (h *CandidateHandler) listBy(status model.HireStatus, search bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := ""
		if search {
			q = r.URL.Query().Get("q")
		}
		out, err := h.deps.ListCandidates(r.Context(), q, status)
		if err != nil {
			fail(h.logger, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createCandidateRequest struct {
	FullName   string `json:"fullName"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	EmailID    string `json:"emailID"`
	Department string `json:"department"`
}

// HandleCreate handles POST /candidate.
func (h *CandidateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeKindError(w, err)
		return
	}
	email := req.Email
	if email == "" {
		email = req.EmailID
	}
	c, err := h.deps.CreateCandidate(r.Context(), types.NewCandidate{
		FullName:   req.FullName,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      email,
		Department: req.Department,
	})
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type selectionRequest struct {
	CandidateID string             `json:"candidateID"`
	Feedback    json.RawMessage    `json:"feedback"`
	Hire        *int               `json:"hire"`
	HireDetails *model.HireDetails `json:"hireDetails"`
}

type selectionResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Candidate model.Candidate `json:"candidate"`
}

// HandleSelection handles PATCH /candidate/selection. A missing candidate id
// answers 404.
func (h *CandidateHandler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeKindError(w, err)
		return
	}
	if strings.TrimSpace(req.CandidateID) == "" {
		writeError(w, http.StatusNotFound, "not_found", errors.New("candidateID is required"))
		return
	}
	d := types.HireDecision{HireDetails: req.HireDetails}
	if len(req.Feedback) > 0 && string(req.Feedback) != "null" {
		d.Feedback = req.Feedback
	}
	if req.Hire != nil {
		hs := model.HireStatus(*req.Hire)
		d.Hire = &hs
	}
	c, err := h.deps.SetPipelineStatus(r.Context(), CallerFrom(r.Context()), req.CandidateID, d)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	status := "updated"
	switch c.Hire {
	case model.HireHired:
		status = "hired"
	case model.HireRejected:
		status = "rejected"
	}
	writeJSON(w, http.StatusOK, selectionResponse{Status: status, Message: "candidate " + status, Candidate: c})
}

type badgeRequest struct {
	CandidateID string `json:"candidateID"`
	BadgeName   string `json:"badgeName"`
	Points      number `json:"points"`
	AssignedBy  string `json:"assignedBy"`
}

// HandleBadge handles PATCH /candidate/badge.
func (h *CandidateHandler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	var req badgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeKindError(w, err)
		return
	}
	if strings.TrimSpace(req.CandidateID) == "" || strings.TrimSpace(req.BadgeName) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("candidateID and badgeName required"))
		return
	}
	points, whole := req.Points.Int()
	if !whole {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("points must be a whole number"))
		return
	}
	h.idempotent(w, r, func() (any, error) {
		return h.deps.AwardBadge(r.Context(), CallerFrom(r.Context()), req.CandidateID, types.BadgeGrant{
			Name:       req.BadgeName,
			Points:     points,
			AssignedBy: req.AssignedBy,
		})
	})
}

type awardXPRequest struct {
	CandidateID string `json:"candidateID"`
	Points      number `json:"points"`
	Reason      string `json:"reason"`
	AwardedBy   string `json:"awardedBy"`
}

type awardXPResponse struct {
	Message   string         `json:"message"`
	Candidate awardedSummary `json:"candidate"`
}

type awardedSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalXP       int    `json:"totalXP"`
	PointsAwarded int    `json:"pointsAwarded"`
}

// HandleAwardXP handles PATCH /candidate/award-xp.
func (h *CandidateHandler) HandleAwardXP(w http.ResponseWriter, r *http.Request) {
	var req awardXPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeKindError(w, err)
		return
	}
	points, whole := req.Points.Int()
	if strings.TrimSpace(req.CandidateID) == "" || !req.Points.set || points == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("candidateID and points are required fields"))
		return
	}
	if !whole {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("points must be a whole number"))
		return
	}
	h.idempotent(w, r, func() (any, error) {
		c, err := h.deps.AwardXP(r.Context(), CallerFrom(r.Context()), req.CandidateID, types.XPGrant{
			Points:    points,
			Reason:    req.Reason,
			AwardedBy: req.AwardedBy,
		})
		if err != nil {
			return nil, err
		}
		return awardXPResponse{
			Message:   "XP awarded successfully",
			Candidate: awardedSummary{ID: c.ID, Name: c.Name(), TotalXP: c.XP, PointsAwarded: points},
		}, nil
	})
}

// idempotent runs award once per Idempotency-Key. A replayed key answers 409;
// a failed award forgets the key so the client may retry.
func (h *CandidateHandler) idempotent(w http.ResponseWriter, r *http.Request, award func() (any, error)) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key != "" {
		key = CallerFrom(r.Context()) + ":" + r.URL.Path + ":" + key
		if h.deps.SeenAndRecord(r.Context(), key) {
			writeError(w, http.StatusConflict, "duplicate_request", ErrDuplicateRequest)
			return
		}
	}
	out, err := award()
	if err != nil {
		if key != "" {
			h.deps.Unrecord(r.Context(), key)
		}
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleLeaderboard handles GET /candidate/leaderboard?department=&period=&scope=&limit=.
func (h *CandidateHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := leaderboard.Query{
		Department: qs.Get("department"),
		Period:     qs.Get("period"),
		Scope:      qs.Get("scope"),
	}
	if l := qs.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("limit must be a positive integer"))
			return
		}
		q.Limit = n
	}
	entries, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type certificateResponse struct {
	PDFBase64 string `json:"pdfBase64"`
	SavedAs   string `json:"savedAs"`
}

// HandleCertificate handles GET /candidate/{id}/certificate?download=&supervisor=.
func (h *CandidateHandler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cert, err := h.deps.Certificate(r.Context(), id, r.URL.Query().Get("supervisor"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	if truthy(r.URL.Query().Get("download")) {
		w.Header().Set("Content-Type", "application/pdf")
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": cert.FileName})
		if disposition == "" {
			disposition = "attachment"
		}
		w.Header().Set("Content-Disposition", disposition)
		w.Header().Set("Content-Length", strconv.Itoa(len(cert.PDF)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cert.PDF)
		return
	}
	writeJSON(w, http.StatusOK, certificateResponse{
		PDFBase64: base64.StdEncoding.EncodeToString(cert.PDF),
		SavedAs:   cert.SavedAs,
	})
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
