// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// XP thresholds used to derive levels.
const (
	XPPerLevel = 100
)

// HireStatus is a candidate's position in the hiring pipeline.
type HireStatus int

// Pipeline states.
const (
	HireRejected  HireStatus = -1
	HireUndecided HireStatus = 0
	HireHired     HireStatus = 1
)

// Valid reports whether s is one of the known pipeline states.
func (s HireStatus) Valid() bool {
	return s == HireRejected || s == HireUndecided || s == HireHired
}

// Eligible reports whether a candidate in this state may receive XP from tasks.
func (s HireStatus) Eligible() bool {
	return s == HireUndecided || s == HireHired
}

func (s HireStatus) String() string {
	switch s {
	case HireRejected:
		return "rejected"
	case HireHired:
		return "hired"
	case HireUndecided:
		return "undecided"
	default:
		return "unknown"
	}
}

// XPSource categorises an XP ledger entry.
type XPSource string

// Ledger entry sources.
const (
	SourceTask      XPSource = "task"
	SourceTaskBonus XPSource = "task_bonus"
	SourceBadge     XPSource = "badge"
	SourceManual    XPSource = "manual"
)

// Valid reports whether s is a known source category.
func (s XPSource) Valid() bool {
	switch s {
	case SourceTask, SourceTaskBonus, SourceBadge, SourceManual:
		return true
	}
	return false
}

// XPEntry is one append-only line of a candidate's XP history.
type XPEntry struct {
	Points      int       `json:"points"`
	Source      XPSource  `json:"source"`
	SourceID    string    `json:"sourceId,omitempty"`
	Description string    `json:"description"`
	AwardedBy   string    `json:"awardedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

// Badge is an achievement granted to a candidate.
type Badge struct {
	Name        string    `json:"name"`
	Points      int       `json:"points"`
	AssignedBy  string    `json:"assignedBy"`
	AwardedDate time.Time `json:"awardedDate"`
}

// HireDetails describes the terms of an internship. Read-only for the ledger.
type HireDetails struct {
	FromDate   string  `json:"fromDate,omitempty"`
	ToDate     string  `json:"toDate,omitempty"`
	IsPaid     bool    `json:"isPaid,omitempty"`
	IsStipend  bool    `json:"isStipend,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Supervisor string  `json:"supervisor,omitempty"`
}

// Candidate is the aggregate root for XP and badge data.
type Candidate struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"firstName,omitempty"`
	LastName    string          `json:"lastName,omitempty"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	Department  string          `json:"department,omitempty"`
	Hire        HireStatus      `json:"hire"`
	HireCount   int             `json:"hireCount"`
	XP          int             `json:"xp"`
	XPHistory   []XPEntry       `json:"xpHistory"`
	Badges      []Badge         `json:"badges"`
	Feedback    json.RawMessage `json:"feedback,omitempty"`
	HireDetails *HireDetails    `json:"hireDetails,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Name returns the display name, falling back to first and last name.
func (c *Candidate) Name() string {
	if c.FullName != "" {
		return c.FullName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Level is floor(xp/100)+1.
func (c *Candidate) Level() int {
	return Level(c.XP)
}

// Level derives the level for an XP total.
func Level(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// LevelProgress is the XP earned inside the current level.
func LevelProgress(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// HistorySum adds up every ledger entry.
func (c *Candidate) HistorySum() int {
	total := 0
	for _, e := range c.XPHistory {
		total += e.Points
	}
	return total
}

// PointsSince sums ledger entries recorded at or after since.
func (c *Candidate) PointsSince(since time.Time) int {
	total := 0
	for _, e := range c.XPHistory {
		if !e.Timestamp.Before(since) {
			total += e.Points
		}
	}
	return total
}

// Clone returns a deep copy so callers can never alias stored slices.
func (c *Candidate) Clone() Candidate {
	out := *c
	out.XPHistory = append([]XPEntry(nil), c.XPHistory...)
	out.Badges = append([]Badge(nil), c.Badges...)
	if c.Feedback != nil {
		out.Feedback = append(json.RawMessage(nil), c.Feedback...)
	}
	if c.HireDetails != nil {
		hd := *c.HireDetails
		out.HireDetails = &hd
	}
	if out.XPHistory == nil {
		out.XPHistory = []XPEntry{}
	}
	if out.Badges == nil {
		out.Badges = []Badge{}
	}
	return out
}
