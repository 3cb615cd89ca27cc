package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"
)

// Task award outcomes recorded per assignee.
const (
	outcomeAwarded  = "awarded"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
	outcomeNotFound = "not_found"
)

// CreateTask validates and stores a work item in the pending state.
func (s *Service) CreateTask(ctx context.Context, in types.NewTask) (model.Task, error) {
	const op = "service.CreateTask"

	title := strings.TrimSpace(in.Title)
	if title == "" || len(in.AssignTo) == 0 || in.Deadline.IsZero() {
		return model.Task{}, errs.Validation(op, "title, assignTo and deadline are required")
	}
	for _, a := range in.AssignTo {
		if err := a.Validate(); err != nil {
			return model.Task{}, errs.WrapKind(op, errs.ErrValidation, err)
		}
	}
	if in.XPReward < 0 {
		return model.Task{}, errs.Validation(op, "xpReward must be positive")
	}
	if in.BonusMultiplier < 0 {
		return model.Task{}, errs.Validation(op, "bonusMultiplier must be positive")
	}

	t := model.Task{
		Title:           title,
		Description:     in.Description,
		Deadline:        in.Deadline.UTC(),
		Priority:        in.Priority,
		AssignTo:        in.AssignTo,
		XPReward:        in.XPReward,
		BonusMultiplier: in.BonusMultiplier,
		Status:          model.TaskPending,
		CreatedAt:       s.now().UTC(),
	}
	if t.XPReward == 0 {
		t.XPReward = s.defaultReward
	}
	if t.BonusMultiplier == 0 {
		t.BonusMultiplier = model.DefaultBonusMultiplier
	}

	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return model.Task{}, storeErr(op, err)
	}
	return created, nil
}

// GetTask returns one work item.
func (s *Service) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, storeErr("service.GetTask", err)
	}
	return t, nil
}

// ListTasks returns work items newest first.
func (s *Service) ListTasks(ctx context.Context) ([]model.Task, error) {
	out, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, storeErr("service.ListTasks", err)
	}
	return out, nil
}

// CompleteTask moves a task to completed and pays every eligible assignee the
// same base and bonus XP. The status transition is claimed before any XP is
// awarded, so a task pays out at most once. Assignees are awarded one after
// another; a failure for one is logged and the rest still receive their award.
func (s *Service) CompleteTask(ctx context.Context, caller, taskID string, req types.CompleteRequest) (model.Task, types.AwardSummary, error) {
	const op = "service.CompleteTask"
	start := time.Now()
	defer func() {
		metrics.RecordAwardLatency(float64(time.Since(start).Milliseconds()))
	}()

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, types.AwardSummary{}, storeErr(op, err)
	}
	if task.Completed() {
		return model.Task{}, types.AwardSummary{}, errs.WrapKind(op, errs.ErrConflict, repository.ErrAlreadyCompleted)
	}

	at := s.now().UTC()
	by := firstNonEmpty(req.CompletedBy, caller)
	b := s.engine.Compute(task, at)

	done, err := s.store.CompleteTask(ctx, taskID, repository.Completion{
		CompletedAt:       at,
		CompletedBy:       by,
		XPAwarded:         b.TotalXP,
		BonusXP:           b.BonusXP,
		TimingDescription: b.TimingDescription,
	})
	if err != nil {
		return model.Task{}, types.AwardSummary{}, storeErr(op, err)
	}
	metrics.RecordTaskCompleted()

	summary := types.AwardSummary{
		BaseXP:            b.BaseXP,
		BonusXP:           b.BonusXP,
		TotalXP:           b.TotalXP,
		TimingDescription: b.TimingDescription,
		InternsAwarded:    []types.InternAward{},
	}
	log := s.logger.With(logger.String("taskId", taskID))

	recipients := recipientsOf(&task, req.InternID)
	if len(recipients) == 0 {
		log.Info(ctx, "task completed with no interns to award")
		return done, summary, nil
	}

	entries := b.Entries(task, by, at)
	for _, id := range recipients {
		c, err := s.store.GetCandidate(ctx, id)
		if err != nil {
			outcome := outcomeFailed
			if errors.Is(err, repository.ErrNotFound) {
				outcome = outcomeNotFound
			}
			metrics.RecordTaskAward(outcome)
			log.Warn(ctx, "assignee lookup failed", logger.String("candidateId", id), logger.Error(err))
			continue
		}
		if !c.Hire.Eligible() {
			metrics.RecordTaskAward(outcomeSkipped)
			log.Info(ctx, "skipping ineligible assignee",
				logger.String("candidateId", id),
				logger.String("hire", c.Hire.String()),
			)
			continue
		}

		updated, err := s.applyAward(ctx, op, id, repository.Award{Entries: cloneEntries(entries)})
		if err != nil {
			metrics.RecordTaskAward(outcomeFailed)
			log.Error(ctx, "award failed", logger.String("candidateId", id), logger.Error(err))
			continue
		}
		metrics.RecordTaskAward(outcomeAwarded)
		summary.InternsAwarded = append(summary.InternsAwarded, types.InternAward{
			ID:        updated.ID,
			Name:      updated.Name(),
			XPAwarded: b.TotalXP,
		})
		s.emit(ctx, model.AwardEvent{
			Type:        model.EventTaskAward,
			CandidateID: updated.ID,
			Points:      b.TotalXP,
			Source:      model.SourceTask,
			SourceID:    task.ID,
			AwardedBy:   by,
			Detail:      b.TimingDescription,
			TS:          at,
		})
	}

	log.Info(ctx, "task completed",
		logger.Int("awarded", len(summary.InternsAwarded)),
		logger.Int("totalXp", b.TotalXP),
	)
	return done, summary, nil
}

// recipientsOf lists individual assignees in order without repeats, falling
// back to the explicit intern only when the task names none.
func recipientsOf(t *model.Task, fallback string) []string {
	assigned := t.InternAssignments()
	if len(assigned) == 0 {
		if fallback = strings.TrimSpace(fallback); fallback != "" {
			return []string{fallback}
		}
		return nil
	}
	seen := make(map[string]struct{}, len(assigned))
	out := make([]string, 0, len(assigned))
	for _, a := range assigned {
		if _, dup := seen[a.TargetID]; dup {
			continue
		}
		seen[a.TargetID] = struct{}{}
		out = append(out, a.TargetID)
	}
	return out
}

func cloneEntries(in []model.XPEntry) []model.XPEntry {
	return append([]model.XPEntry(nil), in...)
}
