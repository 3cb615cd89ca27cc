// Package repository persists candidates and tasks.
package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/okian/internxp/internal/domain/model"
)

// Award is a ledger mutation applied atomically: every entry lands together with
// the xp increment and the optional badge, or nothing does.
type Award struct {
	Entries []model.XPEntry
	Badge   *model.Badge
}

// Points sums the award's entries.
func (a Award) Points() int {
	total := 0
	for _, e := range a.Entries {
		total += e.Points
	}
	return total
}

// HireUpdate carries the optional fields of a hiring decision. Nil fields are left untouched.
type HireUpdate struct {
	Hire        *model.HireStatus
	Feedback    json.RawMessage
	HireDetails *model.HireDetails
}

// CandidateFilter narrows ListCandidates. Empty fields match everything.
type CandidateFilter struct {
	Statuses []model.HireStatus
	Query    string
}

// Counts is an aggregate snapshot of the store, computed without loading rows.
type Counts struct {
	Candidates     int
	Hired          int
	Rejected       int
	Undecided      int
	TotalXP        int
	Badges         int
	Tasks          int
	TasksCompleted int
}

// Completion is the one-time transition of a task to completed.
type Completion struct {
	CompletedAt       time.Time
	CompletedBy       string
	XPAwarded         int
	BonusXP           int
	TimingDescription string
}

// CandidateStore provides access to candidate ledgers.
type CandidateStore interface {
	// CreateCandidate inserts c. Returns ErrDuplicateEmail when the email is taken.
	CreateCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error)
	// GetCandidate returns ErrNotFound if the id is unknown.
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)
	// ListCandidates returns matches in creation order.
	ListCandidates(ctx context.Context, f CandidateFilter) ([]model.Candidate, error)
	// ApplyAward appends entries and badge and increments xp in one atomic step.
	// Returns ErrNegativeBalance if the result would drop xp below zero.
	ApplyAward(ctx context.Context, id string, a Award) (model.Candidate, error)
	// UpdateHire applies a hiring decision; entering hired increments the hire count.
	UpdateHire(ctx context.Context, id string, u HireUpdate) (model.Candidate, error)
}

// TaskStore provides access to work items.
type TaskStore interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	// GetTask returns ErrNotFound if the id is unknown.
	GetTask(ctx context.Context, id string) (model.Task, error)
	// ListTasks returns tasks newest first.
	ListTasks(ctx context.Context) ([]model.Task, error)
	// CompleteTask transitions a pending task to completed exactly once.
	// Returns ErrAlreadyCompleted when the task has already transitioned.
	CompleteTask(ctx context.Context, id string, c Completion) (model.Task, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	CandidateStore
	TaskStore
	// Counts aggregates candidates and tasks for the stats endpoint and gauges.
	Counts(ctx context.Context) (Counts, error)
	Ping(ctx context.Context) error
	Close() error
}

// matches is the case-insensitive substring search over name and email.
func matches(c *model.Candidate, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name()), q) || strings.Contains(strings.ToLower(c.Email), q)
}

func statusIn(s model.HireStatus, set []model.HireStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
