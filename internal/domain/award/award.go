// Package award computes XP rewards for task completions.
package award

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/okian/internxp/internal/domain/model"
)

const day = 24 * time.Hour

// Tier maps a days-early threshold to a bonus rate expressed in whole percent.
type Tier struct {
	MinDaysEarly int
	RatePct      int
	Label        string
}

// DefaultTiers is evaluated top down; the first tier whose threshold is met wins.
var DefaultTiers = []Tier{ //nolint:gochecknoglobals // read-only tier table
	{MinDaysEarly: 7, RatePct: 50, Label: "1+ week bonus"},
	{MinDaysEarly: 3, RatePct: 30, Label: "3+ days bonus"},
	{MinDaysEarly: 1, RatePct: 15, Label: "early completion bonus"},
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTiers replaces the bonus tier table. Tiers must be ordered by descending threshold.
func WithTiers(tiers []Tier) Option {
	return func(e *Engine) {
		if len(tiers) > 0 {
			e.tiers = append([]Tier(nil), tiers...)
		}
	}
}

// WithDefaultReward sets the base XP used for tasks without a reward.
func WithDefaultReward(xp int) Option {
	return func(e *Engine) {
		if xp > 0 {
			e.defaultReward = xp
		}
	}
}

// Breakdown is the result of a reward computation.
type Breakdown struct {
	BaseXP            int     `json:"baseXP"`
	BonusXP           int     `json:"bonusXP"`
	TotalXP           int     `json:"totalXP"`
	DaysEarly         int     `json:"daysEarly"`
	RatePct           int     `json:"bonusRatePct"`
	Multiplier        float64 `json:"bonusMultiplier"`
	TimingDescription string  `json:"timingDescription"`
}

// Engine is a pure reward calculator. It is safe for concurrent use.
type Engine struct {
	tiers         []Tier
	defaultReward int
}

// NewEngine creates an Engine with the default tier table.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tiers:         DefaultTiers,
		defaultReward: model.DefaultXPReward,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the reward for completing task at completedAt. Every timestamp
// ordering yields a result; late completions earn the base reward only.
func (e *Engine) Compute(task model.Task, completedAt time.Time) Breakdown {
	base := task.XPReward
	if base <= 0 {
		base = e.defaultReward
	}
	mult := task.Multiplier()
	b := Breakdown{BaseXP: base, TotalXP: base, Multiplier: mult}

	if task.Deadline.IsZero() {
		b.TimingDescription = "Unable to calculate timing bonus"
		return b
	}

	b.DaysEarly = DaysEarly(task.Deadline, completedAt)
	switch {
	case b.DaysEarly > 0:
		tier, ok := e.tierFor(b.DaysEarly)
		if !ok {
			b.TimingDescription = "Completed on deadline day"
			break
		}
		b.RatePct = tier.RatePct
		b.BonusXP = Bonus(base, tier.RatePct, mult)
		b.TimingDescription = fmt.Sprintf("Completed %d days early (%s)", b.DaysEarly, tier.Label)
		if mult != model.DefaultBonusMultiplier {
			b.TimingDescription += " (" + strconv.FormatFloat(mult, 'f', -1, 64) + "x multiplier)"
		}
	case b.DaysEarly == 0:
		b.TimingDescription = "Completed on deadline"
	default:
		b.TimingDescription = fmt.Sprintf("Completed %d days late", -b.DaysEarly)
	}
	b.TotalXP = b.BaseXP + b.BonusXP
	return b
}

func (e *Engine) tierFor(daysEarly int) (Tier, bool) {
	for _, t := range e.tiers {
		if daysEarly >= t.MinDaysEarly {
			return t, true
		}
	}
	return Tier{}, false
}

// DaysEarly is ceil((deadline - completedAt) / 1 day); negative when late.
func DaysEarly(deadline, completedAt time.Time) int {
	d := math.Ceil(float64(deadline.Sub(completedAt)) / float64(day))
	return int(d)
}

// Bonus is floor(base * ratePct/100 * multiplier). The percent is applied as an
// integer product first so 10 * 15% stays exactly 1.5 before flooring.
func Bonus(base, ratePct int, multiplier float64) int {
	if base <= 0 || ratePct <= 0 || multiplier <= 0 {
		return 0
	}
	return int(math.Floor(float64(base*ratePct) * multiplier / 100))
}

// Entries turns a breakdown into ledger lines: the base entry and, when earned,
// a separate bonus entry.
func (b Breakdown) Entries(task model.Task, awardedBy string, at time.Time) []model.XPEntry {
	entries := []model.XPEntry{{
		Points:      b.BaseXP,
		Source:      model.SourceTask,
		SourceID:    task.ID,
		Description: "Task completed: " + task.Title,
		AwardedBy:   awardedBy,
		Timestamp:   at,
	}}
	if b.BonusXP > 0 {
		entries = append(entries, model.XPEntry{
			Points:      b.BonusXP,
			Source:      model.SourceTaskBonus,
			SourceID:    task.ID,
			Description: "Early completion bonus: " + task.Title + " - " + b.TimingDescription,
			AwardedBy:   awardedBy,
			Timestamp:   at,
		})
	}
	return entries
}
