package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func event(id string) Event {
	return model.AwardEvent{
		EventID:     id,
		Type:        model.EventTaskAward,
		CandidateID: "c-1",
		Points:      10,
		TS:          time.Now(),
	}
}

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		convey.Convey("It starts empty and open", func() {
			convey.So(q.Len(ctx), convey.ShouldEqual, 0)
			convey.So(q.IsClosed(), convey.ShouldBeFalse)
		})

		convey.Convey("Enqueued events are dequeued in order", func() {
			convey.So(q.Enqueue(ctx, event("e1")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, event("e2")), convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			ch := q.Dequeue(dctx)
			convey.So((<-ch).EventID, convey.ShouldEqual, "e1")
			convey.So((<-ch).EventID, convey.ShouldEqual, "e2")
		})

		convey.Convey("A full queue rejects without blocking", func() {
			q.Enqueue(ctx, event("e1"))
			q.Enqueue(ctx, event("e2"))
			convey.So(q.Enqueue(ctx, event("e3")), convey.ShouldBeFalse)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)
		})

		convey.Convey("Close keeps queued events readable and rejects new ones", func() {
			q.Enqueue(ctx, event("e1"))
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, event("e2")), convey.ShouldBeFalse)

			var got []string
			for e := range q.Dequeue(ctx) {
				got = append(got, e.EventID)
			}
			convey.So(got, convey.ShouldResemble, []string{"e1"})
			convey.So(q.Close(), convey.ShouldBeNil)
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	convey.Convey("Given concurrent producers and consumers", t, func() {
		q := NewInMemoryQueue(WithCapacity(50))
		ctx := context.Background()
		const producers, perProducer = 8, 100

		var consumed sync.WaitGroup
		var mu sync.Mutex
		seen := make(map[string]bool)
		for i := 0; i < 4; i++ {
			consumed.Add(1)
			go func() {
				defer consumed.Done()
				for e := range q.Dequeue(ctx) {
					mu.Lock()
					seen[e.EventID] = true
					mu.Unlock()
				}
			}()
		}

		var produced sync.WaitGroup
		for p := 0; p < producers; p++ {
			produced.Add(1)
			go func(p int) {
				defer produced.Done()
				for j := 0; j < perProducer; j++ {
					for !q.Enqueue(ctx, event(fmt.Sprintf("e%d-%d", p, j))) {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		produced.Wait()
		_ = q.Close()
		consumed.Wait()

		convey.So(len(seen), convey.ShouldEqual, producers*perProducer)
		convey.So(q.Len(ctx), convey.ShouldEqual, 0)
	})
}
