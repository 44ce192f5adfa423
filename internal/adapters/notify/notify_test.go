package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/flowboard/internal/adapters/notify"
	"github.com/okian/flowboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// captureSink records delivered events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (s *captureSink) Deliver(ctx context.Context, e notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("collaborator unavailable")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) delivered() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Event(nil), s.events...)
}

func waitFor(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return check()
}

func TestDispatcher_Delivery(t *testing.T) {
	Convey("Given a started dispatcher with a capture sink", t, func() {
		ctx := context.Background()
		sink := &captureSink{}
		d := notify.New(notify.WithSink(sink), notify.WithQueueSize(16))
		d.Start(ctx)
		defer d.Stop()

		Convey("When events are enqueued", func() {
			e1 := notify.Event{EventID: "e1", ItemID: "item-1", State: "in_progress", At: time.Now()}
			e2 := notify.Event{EventID: "e2", ItemID: "item-2", State: "done", At: time.Now()}
			So(d.Enqueue(ctx, e1), ShouldBeTrue)
			So(d.Enqueue(ctx, e2), ShouldBeTrue)

			Convey("Then both should reach the sink", func() {
				So(waitFor(func() bool { return len(sink.delivered()) == 2 }), ShouldBeTrue)
				got := sink.delivered()
				So(got[0].ItemID, ShouldEqual, "item-1")
				So(got[1].State, ShouldEqual, "done")
			})
		})

		Convey("When the sink fails", func() {
			sink.fail = true
			So(d.Enqueue(ctx, notify.Event{EventID: "e3", ItemID: "item-3"}), ShouldBeTrue)

			Convey("Then the event is dropped without retry", func() {
				So(waitFor(func() bool { return d.Len() == 0 }), ShouldBeTrue)
				So(len(sink.delivered()), ShouldEqual, 0)
			})
		})
	})
}

func TestDispatcher_Backpressure(t *testing.T) {
	Convey("Given an unstarted dispatcher with a tiny queue", t, func() {
		ctx := context.Background()
		sink := &captureSink{}
		d := notify.New(notify.WithSink(sink), notify.WithQueueSize(2))

		Convey("When the queue fills up", func() {
			So(d.Enqueue(ctx, notify.Event{EventID: "e1"}), ShouldBeTrue)
			So(d.Enqueue(ctx, notify.Event{EventID: "e2"}), ShouldBeTrue)

			Convey("Then further enqueues should drop, not block", func() {
				So(d.Enqueue(ctx, notify.Event{EventID: "e3"}), ShouldBeFalse)
				So(d.Len(), ShouldEqual, 2)
			})

			Convey("And starting the workers should drain the backlog", func() {
				d.Start(ctx)
				defer d.Stop()
				So(waitFor(func() bool { return len(sink.delivered()) == 2 }), ShouldBeTrue)
			})
		})
	})
}

func TestDispatcher_Stop(t *testing.T) {
	Convey("Given a dispatcher with queued events", t, func() {
		ctx := context.Background()
		sink := &captureSink{}
		d := notify.New(notify.WithSink(sink), notify.WithQueueSize(8), notify.WithWorkerCount(2))
		d.Start(ctx)
		for i := 0; i < 5; i++ {
			So(d.Enqueue(ctx, notify.Event{EventID: "e", ItemID: "item"}), ShouldBeTrue)
		}

		Convey("When stopped", func() {
			d.Stop()

			Convey("Then queued events should have been drained", func() {
				So(len(sink.delivered()), ShouldEqual, 5)
			})

			Convey("And stopping again should be safe", func() {
				So(d.Stop, ShouldNotPanic)
			})
		})
	})
}
