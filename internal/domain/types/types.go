// Package types contains read models shared between the service and its adapters.
package types

import "github.com/okian/internxp/internal/domain/model"

// Leaderboard scopes.
const (
	ScopeHired  = "hired"
	ScopeActive = "active"
)

// Leaderboard periods.
const (
	PeriodAllTime = "all-time"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Status labels shown on leaderboard rows.
const (
	StatusHired     = "Hired"
	StatusCandidate = "Candidate"
)

// DepartmentUnknown is reported for candidates without a department.
const DepartmentUnknown = "Not specified"

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank       int           `json:"rank"`
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	XP         int           `json:"xp"`
	PeriodXP   *int          `json:"periodXp,omitempty"`
	Level      int           `json:"level"`
	Progress   int           `json:"progress"`
	Department string        `json:"department"`
	BadgeCount int           `json:"badgeCount"`
	Badges     []model.Badge `json:"badges"`
	Status     string        `json:"status"`
}

// InternAward is one candidate that received XP from a task completion.
type InternAward struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	XPAwarded int    `json:"xpAwarded"`
}

// AwardSummary reports what a task completion distributed.
type AwardSummary struct {
	BaseXP            int           `json:"baseXP"`
	BonusXP           int           `json:"bonusXP"`
	TotalXP           int           `json:"totalXP"`
	TimingDescription string        `json:"timingDescription"`
	InternsAwarded    []InternAward `json:"internsAwarded"`
}

// Stats is the JSON counter snapshot served at /stats.
type Stats struct {
	Candidates     int   `json:"candidates"`
	Hired          int   `json:"hired"`
	Rejected       int   `json:"rejected"`
	Undecided      int   `json:"undecided"`
	Tasks          int   `json:"tasks"`
	TasksCompleted int   `json:"tasksCompleted"`
	TotalXP        int   `json:"totalXp"`
	Badges         int   `json:"badges"`
	QueueDepth     int   `json:"queueDepth"`
	IdempotentKeys int64 `json:"idempotencyKeys"`
}
