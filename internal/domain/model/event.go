package model

import "time"

// AwardEventType names the ledger mutation an AwardEvent reports.
type AwardEventType string

// Award event kinds.
const (
	EventTaskAward    AwardEventType = "task_award"
	EventBadgeAward   AwardEventType = "badge_award"
	EventManualAward  AwardEventType = "manual_award"
	EventStatusChange AwardEventType = "status_change"
)

// AwardEvent is published after a ledger mutation has been stored.
type AwardEvent struct {
	EventID     string         `json:"eventId"`
	Type        AwardEventType `json:"type"`
	CandidateID string         `json:"candidateId"`
	Points      int            `json:"points"`
	Source      XPSource       `json:"source,omitempty"`
	SourceID    string         `json:"sourceId,omitempty"`
	AwardedBy   string         `json:"awardedBy,omitempty"`
	Detail      string         `json:"detail,omitempty"`
	TS          time.Time      `json:"ts"`
}
