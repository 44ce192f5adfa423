// Package repository implements the durable board store: in-memory
// authoritative state with per-board locking and JSON file persistence.
//
// The board is the unit of locking. Mutating operations on a board run
// under that board's mutex; reads take deep snapshots under the same
// mutex. Cross-board reads lock one board at a time, never two at once.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/pkg/logger"
	"github.com/okian/flowboard/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultMaxRetries = 3
)

// Store holds all boards and persists them as a single JSON document.
type Store struct {
	mu     sync.RWMutex // guards the boards and locks maps
	boards map[string]*model.Board
	locks  map[string]*sync.Mutex

	path       string // empty disables persistence (in-memory mode)
	maxRetries uint64

	logger logger.Logger
}

// New constructs a Store. Call Load to read previously persisted state.
func New(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		boards:     make(map[string]*model.Board),
		locks:      make(map[string]*sync.Mutex),
		maxRetries: defaultMaxRetries,
		logger:     logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// boardLock returns the mutex for a board, creating it lazily.
func (s *Store) boardLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create registers a new board. Fails when the id is already taken.
func (s *Store) Create(ctx context.Context, b *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[b.ID]; ok {
		return fmt.Errorf("board %s: %w", b.ID, model.ErrDuplicateBoard)
	}
	s.boards[b.ID] = b
	s.locks[b.ID] = &sync.Mutex{}
	metrics.UpdateBoardsTotal(len(s.boards))
	return nil
}

// WithBoard runs fn on the live board under its lock. All mutation goes
// through here so concurrent writers to the same board serialize.
func (s *Store) WithBoard(ctx context.Context, id string, fn func(*model.Board) error) error {
	s.mu.RLock()
	b, ok := s.boards[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("board %s: %w", id, model.ErrBoardNotFound)
	}
	l := s.boardLock(id)
	l.Lock()
	defer l.Unlock()
	return fn(b)
}

// Snapshot returns a deep copy of a board taken under its lock. Readers
// can use the copy without further synchronization.
func (s *Store) Snapshot(ctx context.Context, id string) (*model.Board, error) {
	s.mu.RLock()
	b, ok := s.boards[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("board %s: %w", id, model.ErrBoardNotFound)
	}
	l := s.boardLock(id)
	l.Lock()
	defer l.Unlock()
	return b.Clone(), nil
}

// Snapshots returns deep copies of every board, locking one board at a
// time to avoid holding multiple locks.
func (s *Store) Snapshots(ctx context.Context) []*model.Board {
	ids := s.IDs(ctx)
	out := make([]*model.Board, 0, len(ids))
	for _, id := range ids {
		if b, err := s.Snapshot(ctx, id); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// IDs returns all board ids in sorted order.
func (s *Store) IDs(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.boards))
	for id := range s.boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of boards.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boards)
}

// document assembles the persisted document from per-board snapshots.
func (s *Store) document(ctx context.Context) *model.Document {
	doc := model.NewDocument()
	for _, b := range s.Snapshots(ctx) {
		doc.Boards[b.ID] = b
	}
	return doc
}

// observeSave records save duration from a start time.
func observeSave(start time.Time) {
	metrics.RecordStoreSaveDuration(float64(time.Since(start).Milliseconds()))
}
