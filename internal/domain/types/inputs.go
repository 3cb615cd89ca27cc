package types

import (
	"encoding/json"
	"time"

	"github.com/okian/internxp/internal/domain/model"
)

// NewCandidate is the intake form for a candidate.
type NewCandidate struct {
	FullName   string
	FirstName  string
	LastName   string
	Email      string
	Department string
}

// BadgeGrant awards a named badge worth Points.
type BadgeGrant struct {
	Name       string
	Points     int
	AssignedBy string
}

// XPGrant is a manual XP adjustment. Negative points are corrections.
type XPGrant struct {
	Points    int
	Reason    string
	AwardedBy string
}

// HireDecision is a pipeline update. Nil fields are left unchanged.
type HireDecision struct {
	Hire        *model.HireStatus
	Feedback    json.RawMessage
	HireDetails *model.HireDetails
}

// NewTask is the creation form for a work item.
type NewTask struct {
	Title           string
	Description     string
	Deadline        time.Time
	Priority        string
	AssignTo        []model.Assignment
	XPReward        int
	BonusMultiplier float64
}

// CompleteRequest names who completed a task and, for tasks without
// individual assignees, which candidate should receive the reward.
type CompleteRequest struct {
	CompletedBy string
	InternID    string
}

// Certificate is a rendered certificate and where it was saved.
type Certificate struct {
	FileName string
	SavedAs  string
	PDF      []byte
}
