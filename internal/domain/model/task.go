package model

import (
	"errors"
	"strings"
	"time"
)

// Task reward defaults.
const (
	DefaultXPReward        = 10
	DefaultBonusMultiplier = 1.0
)

// TaskStatus is the completion state of a work item.
type TaskStatus int

// Task states. The only transition is pending -> completed.
const (
	TaskPending   TaskStatus = 0
	TaskCompleted TaskStatus = 1
)

// TargetType tags an assignment as an individual candidate or a group.
type TargetType string

// Assignment target kinds.
const (
	TargetIntern TargetType = "intern"
	TargetGroup  TargetType = "group"
)

// Assignment is one recipient of a task.
type Assignment struct {
	TargetID    string     `json:"id"`
	TargetType  TargetType `json:"type"`
	DisplayName string     `json:"name,omitempty"`
}

// Validate checks the tagged variant.
func (a Assignment) Validate() error {
	if strings.TrimSpace(a.TargetID) == "" {
		return errors.New("assignment id is required")
	}
	switch a.TargetType {
	case TargetIntern, TargetGroup:
		return nil
	default:
		return errors.New("assignment type must be intern or group")
	}
}

// Task is a work item with a deadline and an XP reward.
type Task struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Deadline          time.Time    `json:"deadline"`
	Priority          string       `json:"priority,omitempty"`
	AssignTo          []Assignment `json:"assignTo"`
	XPReward          int          `json:"xpReward"`
	BonusMultiplier   float64      `json:"bonusMultiplier"`
	Status            TaskStatus   `json:"status"`
	CompletionDate    *time.Time   `json:"completionDate,omitempty"`
	CompletedBy       string       `json:"completedBy,omitempty"`
	XPAwarded         int          `json:"xpAwarded,omitempty"`
	BonusXP           int          `json:"bonusXP,omitempty"`
	TimingDescription string       `json:"timingDescription,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// Reward returns the base XP, applying the default when unset.
func (t *Task) Reward() int {
	if t.XPReward <= 0 {
		return DefaultXPReward
	}
	return t.XPReward
}

// Multiplier returns the bonus multiplier, applying the default when unset.
func (t *Task) Multiplier() float64 {
	if t.BonusMultiplier <= 0 {
		return DefaultBonusMultiplier
	}
	return t.BonusMultiplier
}

// Completed reports whether the task already transitioned.
func (t *Task) Completed() bool {
	return t.Status == TaskCompleted
}

// InternAssignments returns the individual-candidate targets in assignment order.
func (t *Task) InternAssignments() []Assignment {
	out := make([]Assignment, 0, len(t.AssignTo))
	for _, a := range t.AssignTo {
		if a.TargetType == TargetIntern {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a deep copy.
func (t *Task) Clone() Task {
	out := *t
	out.AssignTo = append([]Assignment(nil), t.AssignTo...)
	if t.CompletionDate != nil {
		cd := *t.CompletionDate
		out.CompletionDate = &cd
	}
	return out
}
