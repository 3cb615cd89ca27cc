// Package leaderboard derives ranked views over candidate ledgers.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
)

// DefaultLimit caps the number of ranked entries.
const DefaultLimit = 100

const day = 24 * time.Hour

// Sentinel errors for invalid queries.
var (
	ErrInvalidScope  = errors.New("invalid leaderboard scope")
	ErrInvalidPeriod = errors.New("invalid leaderboard period")
)

// Query selects and windows the candidates to rank.
type Query struct {
	Department string
	Scope      string
	Period     string
	Limit      int
	Now        time.Time
}

// Normalize fills defaults and validates enumerated fields.
func (q Query) Normalize() (Query, error) {
	q.Department = strings.TrimSpace(q.Department)
	if strings.EqualFold(q.Department, "all") {
		q.Department = ""
	}
	switch q.Scope {
	case "":
		q.Scope = types.ScopeHired
	case types.ScopeHired, types.ScopeActive:
	default:
		return q, fmt.Errorf("%w: %q", ErrInvalidScope, q.Scope)
	}
	switch q.Period {
	case "":
		q.Period = types.PeriodAllTime
	case types.PeriodAllTime, types.PeriodWeekly, types.PeriodMonthly:
	default:
		return q, fmt.Errorf("%w: %q", ErrInvalidPeriod, q.Period)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	return q, nil
}

// windowStart returns the earliest timestamp counted by the period and
// whether the period is windowed at all.
func (q Query) windowStart() (time.Time, bool) {
	switch q.Period {
	case types.PeriodWeekly:
		return q.Now.Add(-7 * day), true
	case types.PeriodMonthly:
		return q.Now.Add(-30 * day), true
	default:
		return time.Time{}, false
	}
}

type scored struct {
	c   *model.Candidate
	key int
}

// Rank filters, sorts by XP descending and decorates the first Limit candidates.
// Ties keep their input order. Rejected candidates never appear.
func Rank(candidates []model.Candidate, q Query) ([]types.Entry, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	since, windowed := q.windowStart()

	pool := make([]scored, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !inScope(c.Hire, q.Scope) {
			continue
		}
		if q.Department != "" && c.Department != q.Department {
			continue
		}
		key := c.XP
		if windowed {
			key = c.PointsSince(since)
		}
		if q.Scope == types.ScopeActive && key <= 0 {
			continue
		}
		pool = append(pool, scored{c: c, key: key})
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].key > pool[j].key })
	if len(pool) > q.Limit {
		pool = pool[:q.Limit]
	}

	out := make([]types.Entry, 0, len(pool))
	for i, s := range pool {
		e := entry(s.c, i+1)
		if windowed {
			k := s.key
			e.PeriodXP = &k
		}
		out = append(out, e)
	}
	return out, nil
}

func inScope(status model.HireStatus, scope string) bool {
	switch status {
	case model.HireHired:
		return true
	case model.HireUndecided:
		return scope == types.ScopeActive
	default:
		return false
	}
}

func entry(c *model.Candidate, rank int) types.Entry {
	dept := c.Department
	if dept == "" {
		dept = types.DepartmentUnknown
	}
	status := types.StatusCandidate
	if c.Hire == model.HireHired {
		status = types.StatusHired
	}
	badges := append([]model.Badge{}, c.Badges...)
	return types.Entry{
		Rank:       rank,
		ID:         c.ID,
		Name:       c.Name(),
		Email:      c.Email,
		XP:         c.XP,
		Level:      model.Level(c.XP),
		Progress:   model.LevelProgress(c.XP),
		Department: dept,
		BadgeCount: len(badges),
		Badges:     badges,
		Status:     status,
	}
}
