package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/certificate"
	"github.com/okian/internxp/internal/domain/leaderboard"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"
)

// Leaderboard ranks candidates by XP. Rejected candidates never appear.
func (s *Service) Leaderboard(ctx context.Context, q leaderboard.Query) ([]types.Entry, error) {
	const op = "service.Leaderboard"
	start := time.Now()

	if q.Limit <= 0 || q.Limit > s.leaderboardLimit {
		q.Limit = s.leaderboardLimit
	}
	if q.Now.IsZero() {
		q.Now = s.now()
	}
	q, err := q.Normalize()
	if err != nil {
		return nil, errs.WrapKind(op, errs.ErrValidation, err)
	}

	statuses := []model.HireStatus{model.HireHired}
	if q.Scope == types.ScopeActive {
		statuses = append(statuses, model.HireUndecided)
	}
	candidates, err := s.store.ListCandidates(ctx, repository.CandidateFilter{Statuses: statuses})
	if err != nil {
		return nil, storeErr(op, err)
	}
	entries, err := leaderboard.Rank(candidates, q)
	if err != nil {
		return nil, errs.WrapKind(op, errs.ErrValidation, err)
	}
	metrics.RecordLeaderboardQuery(q.Scope, float64(time.Since(start).Milliseconds()))
	return entries, nil
}

// Certificate renders a completion certificate for a candidate and saves it
// through the configured blob store. A failed save is logged and the rendered
// bytes are still returned.
func (s *Service) Certificate(ctx context.Context, candidateID, supervisor string) (types.Certificate, error) {
	const op = "service.Certificate"

	c, err := s.GetCandidate(ctx, candidateID)
	if err != nil {
		return types.Certificate{}, errs.Wrap(op, err)
	}
	at := s.now()
	pdf, err := s.renderer.Render(certificate.FromCandidate(&c, supervisor, at))
	if err != nil {
		return types.Certificate{}, errs.WrapKind(op, errs.ErrInternal, err)
	}
	out := types.Certificate{FileName: certificate.FileName(c.Name(), at), PDF: pdf}

	if s.blobs != nil {
		loc, err := s.blobs.Put(ctx, out.FileName, pdf, "application/pdf")
		switch {
		case err == nil:
			out.SavedAs = loc
		case errors.Is(err, context.Canceled):
			return types.Certificate{}, errs.Wrap(op, err)
		default:
			s.logger.Error(ctx, "certificate save failed",
				logger.String("candidateId", c.ID),
				logger.String("file", out.FileName),
				logger.Error(err),
			)
		}
	}
	metrics.RecordCertificateGenerated()
	return out, nil
}
