package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/internxp/internal/adapters/repository"
	service "github.com/okian/internxp/internal/app"
	"github.com/okian/internxp/internal/domain/leaderboard"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type capturePublisher struct {
	mu     sync.Mutex
	events []model.AwardEvent
}

func (p *capturePublisher) Name() string { return "capture" }

func (p *capturePublisher) Publish(_ context.Context, e model.AwardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) types() []model.AwardEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.AwardEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func seed(hire model.HireStatus, id, name, dept string, xp int) model.Candidate {
	c := model.Candidate{ID: id, FullName: name, Email: id + "@example.com", Department: dept, Hire: hire}
	if xp > 0 {
		c.XP = xp
		c.XPHistory = []model.XPEntry{{Points: xp, Source: model.SourceManual, Timestamp: now.Add(-60 * 24 * time.Hour)}}
	}
	return c
}

// failingStore rejects every award for one candidate.
type failingStore struct {
	*repository.MemoryStore
	failFor string
}

func (f *failingStore) ApplyAward(ctx context.Context, id string, a repository.Award) (model.Candidate, error) {
	if id == f.failFor {
		return model.Candidate{}, errors.New("ledger unavailable")
	}
	return f.MemoryStore.ApplyAward(ctx, id, a)
}

func newService(store repository.Store, opts ...service.Option) *service.Service {
	return service.New(append([]service.Option{service.WithStore(store), service.WithClock(clock)}, opts...)...)
}

func TestService_Candidates(t *testing.T) {
	Convey("Given an empty service", t, func() {
		ctx := context.Background()
		svc := newService(repository.NewMemoryStore())

		Convey("CreateCandidate stores an undecided candidate", func() {
			c, err := svc.CreateCandidate(ctx, types.NewCandidate{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
			So(err, ShouldBeNil)
			So(c.ID, ShouldNotBeEmpty)
			So(c.FullName, ShouldEqual, "Ada Lovelace")
			So(c.Hire, ShouldEqual, model.HireUndecided)

			Convey("And a second registration with the same email conflicts", func() {
				_, err := svc.CreateCandidate(ctx, types.NewCandidate{FullName: "Other", Email: "ADA@example.com"})
				So(errors.Is(err, errs.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("CreateCandidate validates name and email", func() {
			_, err := svc.CreateCandidate(ctx, types.NewCandidate{Email: "x@example.com"})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
			_, err = svc.CreateCandidate(ctx, types.NewCandidate{FullName: "X", Email: "not-an-email"})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("Unknown candidates are not found", func() {
			_, err := svc.GetCandidate(ctx, "missing")
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
			_, err = svc.AwardXP(ctx, "admin", "missing", types.XPGrant{Points: 5})
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Awards(t *testing.T) {
	Convey("Given a hired candidate", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(seed(model.HireHired, "c1", "Grace", "eng", 0)))
		svc := newService(store)

		Convey("AwardBadge pairs the badge with a badge ledger entry", func() {
			c, err := svc.AwardBadge(ctx, "caller-1", "c1", types.BadgeGrant{Name: "Mentor", Points: 25})
			So(err, ShouldBeNil)
			So(c.XP, ShouldEqual, 25)
			So(c.Badges, ShouldHaveLength, 1)
			So(c.Badges[0].AssignedBy, ShouldEqual, "caller-1")
			So(c.XPHistory, ShouldHaveLength, 1)
			So(c.XPHistory[0].Source, ShouldEqual, model.SourceBadge)
			So(c.XPHistory[0].Description, ShouldEqual, "Badge awarded: Mentor")
			So(c.XP, ShouldEqual, c.HistorySum())

			Convey("And the same badge can be earned again", func() {
				c, err := svc.AwardBadge(ctx, "caller-1", "c1", types.BadgeGrant{Name: "Mentor", Points: 25, AssignedBy: "lead"})
				So(err, ShouldBeNil)
				So(c.Badges, ShouldHaveLength, 2)
				So(c.XP, ShouldEqual, 50)
				So(c.Badges[1].AssignedBy, ShouldEqual, "lead")
			})
		})

		Convey("AwardBadge requires a name and non-negative points", func() {
			_, err := svc.AwardBadge(ctx, "caller-1", "c1", types.BadgeGrant{})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
			_, err = svc.AwardBadge(ctx, "caller-1", "c1", types.BadgeGrant{Name: "X", Points: -1})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("AwardXP uses the default reason and the caller", func() {
			c, err := svc.AwardXP(ctx, "caller-1", "c1", types.XPGrant{Points: 40})
			So(err, ShouldBeNil)
			So(c.XP, ShouldEqual, 40)
			So(c.XPHistory[0].Description, ShouldEqual, "Manual XP award")
			So(c.XPHistory[0].AwardedBy, ShouldEqual, "caller-1")
		})

		Convey("AwardXP accepts corrections but never below zero", func() {
			_, err := svc.AwardXP(ctx, "admin", "c1", types.XPGrant{Points: 10})
			So(err, ShouldBeNil)
			c, err := svc.AwardXP(ctx, "admin", "c1", types.XPGrant{Points: -4, Reason: "typo"})
			So(err, ShouldBeNil)
			So(c.XP, ShouldEqual, 6)

			_, err = svc.AwardXP(ctx, "admin", "c1", types.XPGrant{Points: -7})
			So(errors.Is(err, errs.ErrConflict), ShouldBeTrue)
		})

		Convey("AwardXP rejects zero points", func() {
			_, err := svc.AwardXP(ctx, "admin", "c1", types.XPGrant{})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("ApplyAward rejects unknown sources", func() {
			_, err := svc.ApplyAward(ctx, "c1", []model.XPEntry{{Points: 1, Source: "bogus"}})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestService_SetPipelineStatus(t *testing.T) {
	Convey("Given an undecided candidate", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(seed(model.HireUndecided, "c1", "Alan", "", 0)))
		svc := newService(store)
		hired, rejected := model.HireHired, model.HireRejected

		Convey("Hiring twice through a rejection counts two hires", func() {
			c, err := svc.SetPipelineStatus(ctx, "hr", "c1", types.HireDecision{Hire: &hired})
			So(err, ShouldBeNil)
			So(c.HireCount, ShouldEqual, 1)

			c, err = svc.SetPipelineStatus(ctx, "hr", "c1", types.HireDecision{Hire: &rejected})
			So(err, ShouldBeNil)
			So(c.HireCount, ShouldEqual, 1)

			c, err = svc.SetPipelineStatus(ctx, "hr", "c1", types.HireDecision{Hire: &hired})
			So(err, ShouldBeNil)
			So(c.HireCount, ShouldEqual, 2)
		})

		Convey("Hire details are stored without touching the status", func() {
			c, err := svc.SetPipelineStatus(ctx, "hr", "c1", types.HireDecision{
				HireDetails: &model.HireDetails{FromDate: "2024-01-01", Supervisor: "Dr. K"},
			})
			So(err, ShouldBeNil)
			So(c.Hire, ShouldEqual, model.HireUndecided)
			So(c.HireDetails.Supervisor, ShouldEqual, "Dr. K")
		})

		Convey("Invalid states and unknown ids are rejected", func() {
			bad := model.HireStatus(7)
			_, err := svc.SetPipelineStatus(ctx, "hr", "c1", types.HireDecision{Hire: &bad})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
			_, err = svc.SetPipelineStatus(ctx, "hr", "", types.HireDecision{Hire: &hired})
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_CompleteTask(t *testing.T) {
	Convey("Given three eligible interns and one rejected", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(
			seed(model.HireHired, "a", "Ann", "eng", 0),
			seed(model.HireHired, "b", "Ben", "eng", 0),
			seed(model.HireUndecided, "c", "Cat", "ops", 0),
			seed(model.HireRejected, "r", "Rex", "ops", 0),
		))
		svc := newService(store)

		task, err := svc.CreateTask(ctx, types.NewTask{
			Title:    "Write docs",
			Deadline: now.Add(10 * 24 * time.Hour),
			AssignTo: []model.Assignment{
				{TargetID: "a", TargetType: model.TargetIntern},
				{TargetID: "b", TargetType: model.TargetIntern},
				{TargetID: "r", TargetType: model.TargetIntern},
				{TargetID: "c", TargetType: model.TargetIntern},
				{TargetID: "g", TargetType: model.TargetGroup},
			},
		})
		So(err, ShouldBeNil)
		So(task.XPReward, ShouldEqual, model.DefaultXPReward)

		Convey("When it is completed ten days early", func() {
			done, summary, err := svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{})
			So(err, ShouldBeNil)

			Convey("Then each eligible intern gets the same base and bonus", func() {
				So(summary.BaseXP, ShouldEqual, 10)
				So(summary.BonusXP, ShouldEqual, 5)
				So(summary.TotalXP, ShouldEqual, 15)
				So(summary.InternsAwarded, ShouldHaveLength, 3)
				for _, ia := range summary.InternsAwarded {
					So(ia.XPAwarded, ShouldEqual, 15)
					So(ia.ID, ShouldNotEqual, "r")
				}
				for _, id := range []string{"a", "b", "c"} {
					c, _ := svc.GetCandidate(ctx, id)
					So(c.XP, ShouldEqual, 15)
					So(c.XP, ShouldEqual, c.HistorySum())
				}
				r, _ := svc.GetCandidate(ctx, "r")
				So(r.XP, ShouldEqual, 0)
			})

			Convey("And the task records the completion once", func() {
				So(done.Completed(), ShouldBeTrue)
				So(done.CompletedBy, ShouldEqual, "sup")
				So(*done.CompletionDate, ShouldEqual, now)
				So(done.XPAwarded, ShouldEqual, 15)
				So(done.TimingDescription, ShouldEqual, "Completed 10 days early (1+ week bonus)")
			})

			Convey("And completing again conflicts without paying twice", func() {
				_, _, err := svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{})
				So(errors.Is(err, errs.ErrConflict), ShouldBeTrue)
				a, _ := svc.GetCandidate(ctx, "a")
				So(a.XP, ShouldEqual, 15)
			})
		})

		Convey("Concurrent completions pay out once", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			successes := 0
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, _, err := svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{}); err == nil {
						mu.Lock()
						successes++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			So(successes, ShouldEqual, 1)
			a, _ := svc.GetCandidate(ctx, "a")
			So(a.XP, ShouldEqual, 15)
		})

		Convey("Unknown tasks are not found", func() {
			_, _, err := svc.CompleteTask(ctx, "sup", "nope", types.CompleteRequest{})
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a store that cannot credit one intern", t, func() {
		ctx := context.Background()
		store := &failingStore{
			MemoryStore: repository.NewMemoryStore(repository.WithCandidates(
				seed(model.HireHired, "a", "Ann", "eng", 0),
				seed(model.HireHired, "b", "Ben", "eng", 0),
				seed(model.HireHired, "c", "Cat", "eng", 0),
			)),
			failFor: "b",
		}
		svc := newService(store)

		task, err := svc.CreateTask(ctx, types.NewTask{
			Title:           "Ship release",
			Deadline:        now.Add(4 * 24 * time.Hour),
			XPReward:        20,
			BonusMultiplier: 1.5,
			AssignTo: []model.Assignment{
				{TargetID: "a", TargetType: model.TargetIntern},
				{TargetID: "b", TargetType: model.TargetIntern},
				{TargetID: "ghost", TargetType: model.TargetIntern},
				{TargetID: "c", TargetType: model.TargetIntern},
			},
		})
		So(err, ShouldBeNil)

		Convey("When the task is completed", func() {
			done, summary, err := svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{})

			Convey("Then the task still completes", func() {
				So(err, ShouldBeNil)
				So(done.Completed(), ShouldBeTrue)
				So(summary.TotalXP, ShouldEqual, 29)
			})

			Convey("And only the credited interns are reported", func() {
				ids := make([]string, 0, len(summary.InternsAwarded))
				for _, ia := range summary.InternsAwarded {
					ids = append(ids, ia.ID)
					So(ia.XPAwarded, ShouldEqual, 29)
				}
				So(ids, ShouldResemble, []string{"a", "c"})
			})

			Convey("And the ledgers reflect exactly what was paid", func() {
				for _, id := range []string{"a", "c"} {
					c, _ := svc.GetCandidate(ctx, id)
					So(c.XP, ShouldEqual, 29)
					So(c.XPHistory, ShouldHaveLength, 2)
					So(c.XP, ShouldEqual, c.HistorySum())
				}
				b, _ := svc.GetCandidate(ctx, "b")
				So(b.XP, ShouldEqual, 0)
				So(b.XPHistory, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a group-only task", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(
			seed(model.HireHired, "a", "Ann", "eng", 0),
			seed(model.HireRejected, "r", "Rex", "eng", 0),
		))
		svc := newService(store)
		newGroupTask := func() model.Task {
			task, err := svc.CreateTask(ctx, types.NewTask{
				Title:    "Team retro",
				Deadline: now.Add(-2 * 24 * time.Hour),
				AssignTo: []model.Assignment{{TargetID: "g1", TargetType: model.TargetGroup}},
			})
			So(err, ShouldBeNil)
			return task
		}

		Convey("The explicit intern receives the award", func() {
			_, summary, err := svc.CompleteTask(ctx, "sup", newGroupTask().ID, types.CompleteRequest{InternID: "a", CompletedBy: "lead"})
			So(err, ShouldBeNil)
			So(summary.TimingDescription, ShouldEqual, "Completed 2 days late")
			So(summary.InternsAwarded, ShouldHaveLength, 1)
			So(summary.InternsAwarded[0].XPAwarded, ShouldEqual, 10)
			a, _ := svc.GetCandidate(ctx, "a")
			So(a.XPHistory[0].AwardedBy, ShouldEqual, "lead")
		})

		Convey("A rejected explicit intern receives nothing", func() {
			done, summary, err := svc.CompleteTask(ctx, "sup", newGroupTask().ID, types.CompleteRequest{InternID: "r"})
			So(err, ShouldBeNil)
			So(done.Completed(), ShouldBeTrue)
			So(summary.InternsAwarded, ShouldBeEmpty)
		})

		Convey("Without an explicit intern nobody is paid", func() {
			done, summary, err := svc.CompleteTask(ctx, "sup", newGroupTask().ID, types.CompleteRequest{})
			So(err, ShouldBeNil)
			So(done.Completed(), ShouldBeTrue)
			So(summary.InternsAwarded, ShouldBeEmpty)
		})
	})
}

func TestService_CreateTask(t *testing.T) {
	Convey("CreateTask validates its input", t, func() {
		ctx := context.Background()
		svc := newService(repository.NewMemoryStore())
		intern := []model.Assignment{{TargetID: "a", TargetType: model.TargetIntern}}

		_, err := svc.CreateTask(ctx, types.NewTask{AssignTo: intern, Deadline: now})
		So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

		_, err = svc.CreateTask(ctx, types.NewTask{Title: "t", Deadline: now})
		So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

		_, err = svc.CreateTask(ctx, types.NewTask{Title: "t", AssignTo: []model.Assignment{{TargetID: "a", TargetType: "team"}}, Deadline: now})
		So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

		_, err = svc.CreateTask(ctx, types.NewTask{Title: "t", AssignTo: intern, Deadline: now, BonusMultiplier: -1})
		So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

		Convey("And lists tasks newest first", func() {
			_, err := svc.CreateTask(ctx, types.NewTask{Title: "first", AssignTo: intern, Deadline: now})
			So(err, ShouldBeNil)
			_, err = svc.CreateTask(ctx, types.NewTask{Title: "second", AssignTo: intern, Deadline: now})
			So(err, ShouldBeNil)
			tasks, err := svc.ListTasks(ctx)
			So(err, ShouldBeNil)
			So(tasks, ShouldHaveLength, 2)
			So(tasks[0].Title, ShouldEqual, "second")
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given a mixed pipeline", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(
			seed(model.HireHired, "a", "Ann", "eng", 120),
			seed(model.HireUndecided, "u", "Uma", "eng", 300),
			seed(model.HireUndecided, "z", "Zed", "eng", 0),
			seed(model.HireRejected, "r", "Rex", "eng", 900),
			seed(model.HireHired, "b", "Ben", "ops", 80),
		))
		svc := newService(store)

		Convey("The default scope ranks hired interns only", func() {
			entries, err := svc.Leaderboard(ctx, leaderboard.Query{})
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].ID, ShouldEqual, "a")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[0].Level, ShouldEqual, 2)
			So(entries[0].Progress, ShouldEqual, 20)
			So(entries[1].Rank, ShouldEqual, 2)
		})

		Convey("The active scope adds undecided candidates with xp", func() {
			entries, err := svc.Leaderboard(ctx, leaderboard.Query{Scope: types.ScopeActive})
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].ID, ShouldEqual, "u")
			So(entries[0].Status, ShouldEqual, types.StatusCandidate)
		})

		Convey("Department filters are exact", func() {
			entries, err := svc.Leaderboard(ctx, leaderboard.Query{Department: "ops"})
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].ID, ShouldEqual, "b")
		})

		Convey("Weekly windows only count recent points", func() {
			_, err := svc.AwardXP(ctx, "admin", "b", types.XPGrant{Points: 5})
			So(err, ShouldBeNil)
			entries, err := svc.Leaderboard(ctx, leaderboard.Query{Period: types.PeriodWeekly})
			So(err, ShouldBeNil)
			So(entries[0].ID, ShouldEqual, "b")
			So(*entries[0].PeriodXP, ShouldEqual, 5)
		})

		Convey("Unknown scopes are validation errors", func() {
			_, err := svc.Leaderboard(ctx, leaderboard.Query{Scope: "everyone"})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestService_Idempotency(t *testing.T) {
	Convey("Idempotency keys are recorded once and can be forgotten", t, func() {
		ctx := context.Background()
		svc := newService(repository.NewMemoryStore())
		So(svc.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
		So(svc.SeenAndRecord(ctx, "k1"), ShouldBeTrue)
		svc.Unrecord(ctx, "k1")
		So(svc.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
	})
}

type failingBlobs struct{}

func (failingBlobs) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("disk full")
}

func TestService_Certificate(t *testing.T) {
	Convey("Given a hired intern with badges", t, func() {
		ctx := context.Background()
		c := seed(model.HireHired, "a", "Ann Lee", "eng", 0)
		c.Badges = []model.Badge{{Name: "Mentor", Points: 10}}
		store := repository.NewMemoryStore(repository.WithCandidates(c))

		Convey("A failed save still returns the rendered PDF", func() {
			svc := newService(store, service.WithBlobStore(failingBlobs{}))
			cert, err := svc.Certificate(ctx, "a", "")
			So(err, ShouldBeNil)
			So(string(cert.PDF[:4]), ShouldEqual, "%PDF")
			So(cert.FileName, ShouldEqual, "certificate_Ann_Lee_1718020800000.pdf")
			So(cert.SavedAs, ShouldBeEmpty)
		})

		Convey("Unknown candidates are not found", func() {
			svc := newService(store)
			_, err := svc.Certificate(ctx, "missing", "")
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Stats counts the pipeline and the ledger", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithCandidates(
			seed(model.HireHired, "a", "Ann", "eng", 10),
			seed(model.HireRejected, "r", "Rex", "eng", 5),
			seed(model.HireUndecided, "u", "Uma", "eng", 0),
		))
		svc := newService(store)
		st, err := svc.Stats(ctx)
		So(err, ShouldBeNil)
		So(st.Candidates, ShouldEqual, 3)
		So(st.Hired, ShouldEqual, 1)
		So(st.Rejected, ShouldEqual, 1)
		So(st.Undecided, ShouldEqual, 1)
		So(st.TotalXP, ShouldEqual, 15)
		So(st.Tasks, ShouldEqual, 0)

		Convey("And follows badges and task completions", func() {
			_, err := svc.AwardBadge(ctx, "sup", "a", types.BadgeGrant{Name: "Helper", Points: 5})
			So(err, ShouldBeNil)
			task, err := svc.CreateTask(ctx, types.NewTask{
				Title:    "Triage",
				Deadline: now,
				AssignTo: []model.Assignment{{TargetID: "a", TargetType: model.TargetIntern}},
			})
			So(err, ShouldBeNil)
			_, err = svc.CreateTask(ctx, types.NewTask{
				Title:    "Backlog",
				Deadline: now,
				AssignTo: []model.Assignment{{TargetID: "a", TargetType: model.TargetIntern}},
			})
			So(err, ShouldBeNil)
			_, _, err = svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{})
			So(err, ShouldBeNil)

			st, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.Badges, ShouldEqual, 1)
			So(st.Tasks, ShouldEqual, 2)
			So(st.TasksCompleted, ShouldEqual, 1)
			So(st.TotalXP, ShouldEqual, 30)
		})
	})
}
