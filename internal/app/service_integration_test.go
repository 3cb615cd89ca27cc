package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/internxp/internal/adapters/blob"
	"github.com/okian/internxp/internal/adapters/repository"
	service "github.com/okian/internxp/internal/app"
	"github.com/okian/internxp/internal/domain/leaderboard"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with an event publisher", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pub := &capturePublisher{}
		dir := t.TempDir()
		blobs, err := blob.NewDirStore(dir, "/generated_certificates")
		So(err, ShouldBeNil)

		svc := newService(repository.NewMemoryStore(),
			service.WithPublisher(pub),
			service.WithBlobStore(blobs),
			service.WithWorkerCount(1),
			service.WithQueueSize(100),
		)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When a hired intern completes a task four days early", func() {
			intern, err := svc.CreateCandidate(ctx, types.NewCandidate{FullName: "Ivy Intern", Email: "ivy@example.com", Department: "eng"})
			So(err, ShouldBeNil)
			hired := model.HireHired
			_, err = svc.SetPipelineStatus(ctx, "hr", intern.ID, types.HireDecision{
				Hire:        &hired,
				HireDetails: &model.HireDetails{FromDate: "2024-01-01", ToDate: "2024-06-30"},
			})
			So(err, ShouldBeNil)

			task, err := svc.CreateTask(ctx, types.NewTask{
				Title:           "Ship feature",
				Deadline:        now.Add(4 * 24 * time.Hour),
				XPReward:        20,
				BonusMultiplier: 1.5,
				AssignTo:        []model.Assignment{{TargetID: intern.ID, TargetType: model.TargetIntern, DisplayName: "Ivy"}},
			})
			So(err, ShouldBeNil)

			_, summary, err := svc.CompleteTask(ctx, "sup", task.ID, types.CompleteRequest{})
			So(err, ShouldBeNil)
			_, err = svc.AwardBadge(ctx, "sup", intern.ID, types.BadgeGrant{Name: "Shipper", Points: 5})
			So(err, ShouldBeNil)

			Convey("Then the ledger holds base and bonus entries totalling 29", func() {
				So(summary.TotalXP, ShouldEqual, 29)
				So(summary.TimingDescription, ShouldEqual, "Completed 4 days early (3+ days bonus) (1.5x multiplier)")

				c, err := svc.GetCandidate(ctx, intern.ID)
				So(err, ShouldBeNil)
				So(c.XP, ShouldEqual, 34)
				So(c.XP, ShouldEqual, c.HistorySum())
				So(c.XPHistory[0].Points, ShouldEqual, 20)
				So(c.XPHistory[0].Source, ShouldEqual, model.SourceTask)
				So(c.XPHistory[1].Points, ShouldEqual, 9)
				So(c.XPHistory[1].Source, ShouldEqual, model.SourceTaskBonus)
			})

			Convey("And the intern tops the leaderboard", func() {
				entries, err := svc.Leaderboard(ctx, leaderboard.Query{Department: "all"})
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].XP, ShouldEqual, 34)
				So(entries[0].BadgeCount, ShouldEqual, 1)
			})

			Convey("And a certificate is saved to the blob store", func() {
				cert, err := svc.Certificate(ctx, intern.ID, "Dr. Who")
				So(err, ShouldBeNil)
				So(cert.SavedAs, ShouldEqual, "/generated_certificates/"+cert.FileName)
			})

			Convey("And stopping drains every award event", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(pub.types(), ShouldResemble, []model.AwardEventType{
					model.EventStatusChange,
					model.EventTaskAward,
					model.EventBadgeAward,
				})
			})
		})

		Reset(func() {
			_ = svc.Stop(context.Background())
		})
	})
}
