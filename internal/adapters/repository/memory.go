package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/metrics"
)

// MemoryStore is an in-process Store. Every mutation runs under one lock, which
// makes ApplyAward atomic with respect to concurrent writers.
type MemoryStore struct {
	mu         sync.RWMutex
	candidates map[string]*model.Candidate
	order      []string
	emails     map[string]string
	tasks      map[string]*model.Task
	taskOrder  []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		candidates: make(map[string]*model.Candidate),
		emails:     make(map[string]string),
		tasks:      make(map[string]*model.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateCandidatesTotal(len(s.order))
	return s
}

func (s *MemoryStore) putCandidate(c model.Candidate) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := s.candidates[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.candidates[c.ID] = &c
	if c.Email != "" {
		s.emails[strings.ToLower(c.Email)] = c.ID
	}
}

func (s *MemoryStore) putTask(t model.Task) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, ok := s.tasks[t.ID]; !ok {
		s.taskOrder = append(s.taskOrder, t.ID)
	}
	s.tasks[t.ID] = &t
}

// CreateCandidate implements CandidateStore.
func (s *MemoryStore) CreateCandidate(_ context.Context, c model.Candidate) (model.Candidate, error) {
	defer observe("create_candidate", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[strings.ToLower(c.Email)]; taken {
		return model.Candidate{}, ErrDuplicateEmail
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.putCandidate(c.Clone())
	metrics.UpdateCandidatesTotal(len(s.order))
	return c.Clone(), nil
}

// GetCandidate implements CandidateStore.
func (s *MemoryStore) GetCandidate(_ context.Context, id string) (model.Candidate, error) {
	defer observe("get_candidate", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	return c.Clone(), nil
}

// ListCandidates implements CandidateStore.
func (s *MemoryStore) ListCandidates(_ context.Context, f CandidateFilter) ([]model.Candidate, error) {
	defer observe("list_candidates", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Candidate, 0, len(s.order))
	for _, id := range s.order {
		c := s.candidates[id]
		if statusIn(c.Hire, f.Statuses) && matches(c, f.Query) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// ApplyAward implements CandidateStore.
func (s *MemoryStore) ApplyAward(_ context.Context, id string, a Award) (model.Candidate, error) {
	defer observe("apply_award", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	points := a.Points()
	if c.XP+points < 0 {
		return model.Candidate{}, ErrNegativeBalance
	}
	c.XP += points
	c.XPHistory = append(c.XPHistory, a.Entries...)
	if a.Badge != nil {
		c.Badges = append(c.Badges, *a.Badge)
	}
	return c.Clone(), nil
}

// UpdateHire implements CandidateStore.
func (s *MemoryStore) UpdateHire(_ context.Context, id string, u HireUpdate) (model.Candidate, error) {
	defer observe("update_hire", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	if u.Hire != nil {
		if *u.Hire == model.HireHired && c.Hire != model.HireHired {
			c.HireCount++
		}
		c.Hire = *u.Hire
	}
	if u.Feedback != nil {
		c.Feedback = append([]byte(nil), u.Feedback...)
	}
	if u.HireDetails != nil {
		hd := *u.HireDetails
		c.HireDetails = &hd
	}
	return c.Clone(), nil
}

// CreateTask implements TaskStore.
func (s *MemoryStore) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	defer observe("create_task", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.putTask(t.Clone())
	return t.Clone(), nil
}

// GetTask implements TaskStore.
func (s *MemoryStore) GetTask(_ context.Context, id string) (model.Task, error) {
	defer observe("get_task", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t.Clone(), nil
}

// ListTasks implements TaskStore.
func (s *MemoryStore) ListTasks(_ context.Context) ([]model.Task, error) {
	defer observe("list_tasks", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.taskOrder))
	for i := len(s.taskOrder) - 1; i >= 0; i-- {
		out = append(out, s.tasks[s.taskOrder[i]].Clone())
	}
	return out, nil
}

// CompleteTask implements TaskStore.
func (s *MemoryStore) CompleteTask(_ context.Context, id string, c Completion) (model.Task, error) {
	defer observe("complete_task", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if t.Completed() {
		return model.Task{}, ErrAlreadyCompleted
	}
	at := c.CompletedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	t.Status = model.TaskCompleted
	t.CompletionDate = &at
	t.CompletedBy = c.CompletedBy
	t.XPAwarded = c.XPAwarded
	t.BonusXP = c.BonusXP
	t.TimingDescription = c.TimingDescription
	return t.Clone(), nil
}

// Counts implements Store.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	defer observe("counts", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Counts{Candidates: len(s.candidates), Tasks: len(s.tasks)}
	for _, c := range s.candidates {
		switch c.Hire {
		case model.HireHired:
			out.Hired++
		case model.HireRejected:
			out.Rejected++
		default:
			out.Undecided++
		}
		out.TotalXP += c.XP
		out.Badges += len(c.Badges)
	}
	for _, t := range s.tasks {
		if t.Completed() {
			out.TasksCompleted++
		}
	}
	return out, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}
