package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"
)

const defaultManualReason = "Manual XP award"

// CreateCandidate registers a candidate in the undecided state.
func (s *Service) CreateCandidate(ctx context.Context, in types.NewCandidate) (model.Candidate, error) {
	const op = "service.CreateCandidate"

	c := model.Candidate{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		Hire:       model.HireUndecided,
		CreatedAt:  s.now().UTC(),
	}
	if c.FullName == "" {
		c.FullName = c.Name()
	}
	if c.FullName == "" {
		return model.Candidate{}, errs.Validation(op, "fullName or firstName and lastName required")
	}
	if c.Email == "" {
		return model.Candidate{}, errs.Validation(op, "email required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return model.Candidate{}, errs.Validation(op, "email is not a valid address")
	}

	created, err := s.store.CreateCandidate(ctx, c)
	if err != nil {
		return model.Candidate{}, storeErr(op, err)
	}
	s.logger.Info(ctx, "candidate created", logger.String("candidateId", created.ID))
	return created, nil
}

// GetCandidate returns one candidate.
func (s *Service) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	const op = "service.GetCandidate"
	if strings.TrimSpace(id) == "" {
		return model.Candidate{}, errs.NewKind(op, errs.ErrNotFound)
	}
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return model.Candidate{}, storeErr(op, err)
	}
	return c, nil
}

// ListCandidates returns candidates in the given pipeline states whose name or
// email contains query.
func (s *Service) ListCandidates(ctx context.Context, query string, statuses ...model.HireStatus) ([]model.Candidate, error) {
	out, err := s.store.ListCandidates(ctx, repository.CandidateFilter{Statuses: statuses, Query: query})
	if err != nil {
		return nil, storeErr("service.ListCandidates", err)
	}
	return out, nil
}

// ApplyAward appends entries to a candidate's ledger as one atomic update.
func (s *Service) ApplyAward(ctx context.Context, candidateID string, entries []model.XPEntry) (model.Candidate, error) {
	const op = "service.ApplyAward"
	if len(entries) == 0 {
		return model.Candidate{}, errs.Validation(op, "at least one entry required")
	}
	for i := range entries {
		if !entries[i].Source.Valid() {
			return model.Candidate{}, errs.Validation(op, "unknown xp source "+string(entries[i].Source))
		}
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = s.now().UTC()
		}
	}
	return s.applyAward(ctx, op, candidateID, repository.Award{Entries: entries})
}

func (s *Service) applyAward(ctx context.Context, op, candidateID string, a repository.Award) (model.Candidate, error) {
	c, err := s.store.ApplyAward(ctx, candidateID, a)
	if err != nil {
		return model.Candidate{}, storeErr(op, err)
	}
	for _, e := range a.Entries {
		metrics.RecordXPAwarded(string(e.Source), e.Points)
	}
	return c, nil
}

// AwardBadge adds a badge and its paired badge-sourced XP entry in one update.
// Repeated names are kept; a candidate may earn the same badge more than once.
func (s *Service) AwardBadge(ctx context.Context, caller, candidateID string, g types.BadgeGrant) (model.Candidate, error) {
	const op = "service.AwardBadge"

	name := strings.TrimSpace(g.Name)
	if candidateID == "" || name == "" {
		return model.Candidate{}, errs.Validation(op, "candidateID and badgeName required")
	}
	if g.Points < 0 {
		return model.Candidate{}, errs.Validation(op, "badge points cannot be negative")
	}
	by := firstNonEmpty(g.AssignedBy, caller)
	at := s.now().UTC()

	badge := model.Badge{Name: name, Points: g.Points, AssignedBy: by, AwardedDate: at}
	entry := model.XPEntry{
		Points:      g.Points,
		Source:      model.SourceBadge,
		SourceID:    name,
		Description: "Badge awarded: " + name,
		AwardedBy:   by,
		Timestamp:   at,
	}
	c, err := s.applyAward(ctx, op, candidateID, repository.Award{Entries: []model.XPEntry{entry}, Badge: &badge})
	if err != nil {
		return model.Candidate{}, err
	}
	metrics.RecordBadgeAwarded()
	s.emit(ctx, model.AwardEvent{
		Type:        model.EventBadgeAward,
		CandidateID: c.ID,
		Points:      g.Points,
		Source:      model.SourceBadge,
		SourceID:    name,
		AwardedBy:   by,
		Detail:      name,
		TS:          at,
	})
	return c, nil
}

// AwardXP grants manual XP. A negative grant that would take the balance below
// zero is rejected as a conflict.
func (s *Service) AwardXP(ctx context.Context, caller, candidateID string, g types.XPGrant) (model.Candidate, error) {
	const op = "service.AwardXP"

	if candidateID == "" || g.Points == 0 {
		return model.Candidate{}, errs.Validation(op, "candidateID and points required")
	}
	by := firstNonEmpty(g.AwardedBy, caller)
	at := s.now().UTC()
	entry := model.XPEntry{
		Points:      g.Points,
		Source:      model.SourceManual,
		Description: firstNonEmpty(strings.TrimSpace(g.Reason), defaultManualReason),
		AwardedBy:   by,
		Timestamp:   at,
	}
	c, err := s.applyAward(ctx, op, candidateID, repository.Award{Entries: []model.XPEntry{entry}})
	if err != nil {
		return model.Candidate{}, err
	}
	s.emit(ctx, model.AwardEvent{
		Type:        model.EventManualAward,
		CandidateID: c.ID,
		Points:      g.Points,
		Source:      model.SourceManual,
		AwardedBy:   by,
		Detail:      entry.Description,
		TS:          at,
	})
	return c, nil
}

// SetPipelineStatus records a hiring decision. Moving into hired from any other
// state increments the hire count; leaving hired never decrements it.
func (s *Service) SetPipelineStatus(ctx context.Context, caller, candidateID string, d types.HireDecision) (model.Candidate, error) {
	const op = "service.SetPipelineStatus"

	if candidateID == "" {
		return model.Candidate{}, errs.NewKind(op, errs.ErrNotFound)
	}
	if d.Hire != nil && !d.Hire.Valid() {
		return model.Candidate{}, errs.Validation(op, "hire must be -1, 0 or 1")
	}
	c, err := s.store.UpdateHire(ctx, candidateID, repository.HireUpdate{
		Hire:        d.Hire,
		Feedback:    d.Feedback,
		HireDetails: d.HireDetails,
	})
	if err != nil {
		return model.Candidate{}, storeErr(op, err)
	}
	if d.Hire != nil {
		s.emit(ctx, model.AwardEvent{
			Type:        model.EventStatusChange,
			CandidateID: c.ID,
			AwardedBy:   caller,
			Detail:      c.Hire.String(),
		})
	}
	return c, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
