// Package notify delivers column-transition events to the external
// item-state collaborator.
//
// Delivery is best-effort and at-most-once: a move commits before its
// event is enqueued, enqueue never blocks (events are dropped on
// backpressure), and delivery failures are logged, never retried, and
// never affect the board.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/okian/flowboard/pkg/logger"
	"github.com/okian/flowboard/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultQueueSize      = 1024
	defaultWorkerCount    = 1
	workerShutdownTimeout = 5 * time.Second
)

// Event is one column transition: the item id and its new logical state.
type Event struct {
	EventID string    `json:"event_id"`
	ItemID  string    `json:"item_id"`
	State   string    `json:"state"`
	At      time.Time `json:"at"`
}

// Sink receives transition events. Implementations must tolerate
// duplicates never arriving; the dispatcher guarantees at-most-once.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// LogSink is the default collaborator stand-in: it logs each transition.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink that logs deliveries.
func NewLogSink() *LogSink {
	return &LogSink{logger: logger.Get().Named("item-state")}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(ctx context.Context, e Event) error {
	s.logger.Info(ctx, "item state transition",
		logger.String("item_id", e.ItemID),
		logger.String("state", e.State),
	)
	return nil
}

// Dispatcher queues transition events and delivers them asynchronously.
type Dispatcher struct {
	events      chan Event
	sink        Sink
	queueSize   int
	workerCount int

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize bounds the in-memory event queue.
func WithQueueSize(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(d *Dispatcher) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// WithSink sets the delivery target.
func WithSink(sink Sink) Option {
	return func(d *Dispatcher) {
		if sink != nil {
			d.sink = sink
		}
	}
}

// New constructs a Dispatcher. Call Start before enqueuing.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queueSize:   defaultQueueSize,
		workerCount: defaultWorkerCount,
		done:        make(chan struct{}),
		logger:      logger.Get().Named("notify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sink == nil {
		d.sink = NewLogSink()
	}
	d.events = make(chan Event, d.queueSize)
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workerCount; i++ {
			d.wg.Add(1)
			go d.run(ctx)
		}
	})
}

// run is one delivery worker loop.
func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			// Drain whatever is already queued, then stop.
			for {
				select {
				case e := <-d.events:
					d.deliver(ctx, e)
				default:
					return
				}
			}
		case e := <-d.events:
			d.deliver(ctx, e)
			metrics.UpdateNotifyQueueSize(len(d.events))
		}
	}
}

// deliver hands one event to the sink. Failures are logged only.
func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	if err := d.sink.Deliver(ctx, e); err != nil {
		metrics.RecordNotifyDeliveryError()
		metrics.RecordErrorByComponent("notify", "delivery_error")
		d.logger.Warn(ctx, "transition event delivery failed",
			logger.String("event_id", e.EventID),
			logger.String("item_id", e.ItemID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordNotifyDelivered()
}

// Enqueue submits an event without blocking. Returns false when the queue
// is full and the event was dropped.
func (d *Dispatcher) Enqueue(ctx context.Context, e Event) bool {
	select {
	case d.events <- e:
		metrics.RecordNotifyEnqueued()
		metrics.UpdateNotifyQueueSize(len(d.events))
		return true
	default:
		metrics.RecordNotifyDropped()
		d.logger.Warn(ctx, "transition event dropped on backpressure",
			logger.String("event_id", e.EventID),
			logger.String("item_id", e.ItemID),
		)
		return false
	}
}

// Len returns the current number of queued events.
func (d *Dispatcher) Len() int {
	return len(d.events)
}

// Stop drains queued events and stops the workers.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	waitCh := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(workerShutdownTimeout):
		d.logger.Warn(context.Background(), "notify worker shutdown timed out")
	}
}
