// Package app provides the core board service that implements the
// dependencies required by the HTTP API.
//
// The service owns the unit-of-locking rule: every mutating operation on
// a board runs under that board's lock in the store, and every read works
// on a deep snapshot. Cross-board operations never hold more than one
// board lock at a time.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/flowboard/internal/adapters/notify"
	"github.com/okian/flowboard/internal/adapters/repository"
	boardengine "github.com/okian/flowboard/internal/domain/board"
	"github.com/okian/flowboard/internal/domain/flow"
	"github.com/okian/flowboard/internal/domain/priority"
	"github.com/okian/flowboard/pkg/logger"
)

// Default service configuration constants.
const (
	defaultNotifyQueueSize  = 1024
	defaultNotifyWorkers    = 1
	defaultMaxSearchResults = 200
)

// Service implements the board, flow and prioritization operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.Store
	engine     *boardengine.Engine
	analyzer   *flow.Analyzer
	scorer     *priority.Scorer
	dispatcher *notify.Dispatcher

	// Configuration
	storePath           string
	persistMaxRetries   int
	notifyQueueSize     int
	notifyWorkers       int
	notifySink          notify.Sink
	bottleneckThreshold int
	maxSearchResults    int
	defaultWIPLimits    map[string]int
	weightCustomer      float64
	weightUnblock       float64
	weightWorker        float64
	weightLearning      float64
	clock               func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorePath sets the board document path. Empty keeps the store
// in-memory.
func WithStorePath(path string) Option {
	return func(s *Service) {
		s.storePath = path
	}
}

// WithPersistMaxRetries bounds persistence write retries.
func WithPersistMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.persistMaxRetries = n
		}
	}
}

// WithNotifyQueueSize bounds the transition event queue.
func WithNotifyQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.notifyQueueSize = size
		}
	}
}

// WithNotifyWorkerCount sets the number of delivery workers.
func WithNotifyWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.notifyWorkers = count
		}
	}
}

// WithNotifySink sets the item-state collaborator target.
func WithNotifySink(sink notify.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.notifySink = sink
		}
	}
}

// WithBottleneckThreshold sets the unlimited-column bottleneck heuristic.
func WithBottleneckThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.bottleneckThreshold = threshold
		}
	}
}

// WithMaxSearchResults caps card search results.
func WithMaxSearchResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchResults = n
		}
	}
}

// WithDefaultWIPLimits sets per-column WIP limits applied to new boards,
// keyed by column type string.
func WithDefaultWIPLimits(limits map[string]int) Option {
	return func(s *Service) {
		s.defaultWIPLimits = limits
	}
}

// WithFactorWeights overrides the prioritization factor weights.
func WithFactorWeights(customer, unblock, worker, learning float64) Option {
	return func(s *Service) {
		if customer > 0 {
			s.weightCustomer = customer
		}
		if unblock > 0 {
			s.weightUnblock = unblock
		}
		if worker > 0 {
			s.weightWorker = worker
		}
		if learning > 0 {
			s.weightLearning = learning
		}
	}
}

// WithClock sets the time source, used by tests for determinism.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		persistMaxRetries: -1, // store default applies
		notifyQueueSize:   defaultNotifyQueueSize,
		notifyWorkers:     defaultNotifyWorkers,
		maxSearchResults:  defaultMaxSearchResults,
		clock:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting board service...")

	storeOpts := []repository.Option{
		repository.WithPath(s.storePath),
		repository.WithLogger(s.logger.Named("store")),
	}
	if s.persistMaxRetries >= 0 {
		storeOpts = append(storeOpts, repository.WithMaxRetries(s.persistMaxRetries))
	}
	s.store = repository.New(ctx, storeOpts...)
	if err := s.store.Load(ctx); err != nil {
		return err
	}

	s.engine = boardengine.New(boardengine.WithClock(s.clock))
	s.analyzer = flow.New(
		flow.WithBottleneckThreshold(s.bottleneckThreshold),
		flow.WithClock(s.clock),
	)
	s.scorer = priority.New(
		priority.WithWeights(s.weightCustomer, s.weightUnblock, s.weightWorker, s.weightLearning),
		priority.WithClock(s.clock),
	)

	s.dispatcher = notify.New(
		notify.WithQueueSize(s.notifyQueueSize),
		notify.WithWorkerCount(s.notifyWorkers),
		notify.WithSink(s.notifySink),
	)
	s.dispatcher.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "board service started",
		logger.Bool("persistent", s.storePath != ""),
		logger.String("store_path", s.storePath),
		logger.Int("boards", s.store.Count(ctx)),
	)
	return nil
}

// Stop gracefully shuts down the service, persisting a final snapshot.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping board service...")

	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	if err := s.store.Save(ctx); err != nil {
		s.logger.Error(ctx, "final board save failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "board service stopped")
}

// persist writes the current state. Persistence failures do not roll back
// a committed mutation; they are logged by the store and counted here.
func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx); err != nil {
		s.logger.Warn(ctx, "board persistence failed; in-memory state remains authoritative", logger.Error(err))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		stats["boards"] = s.store.Count(ctx)
		stats["notifyQueueLength"] = s.dispatcher.Len()
	}
	return stats
}
