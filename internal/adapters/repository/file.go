package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/pkg/logger"
	"github.com/okian/flowboard/pkg/metrics"
)

// Load reads the persisted document from the configured path. A missing
// file is not an error: the store simply starts empty.
func (s *Store) Load(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info(ctx, "no persisted board document, starting empty", logger.String("path", s.path))
			return nil
		}
		return fmt.Errorf("read board document %s: %w", s.path, err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("decode board document %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = doc.Boards
	if s.boards == nil {
		s.boards = make(map[string]*model.Board)
	}
	s.locks = make(map[string]*sync.Mutex, len(s.boards))
	for id := range s.boards {
		s.locks[id] = &sync.Mutex{}
	}
	metrics.RecordStoreLoad()
	metrics.UpdateBoardsTotal(len(s.boards))
	s.logger.Info(ctx, "board document loaded",
		logger.String("path", s.path),
		logger.Int("boards", len(s.boards)),
	)
	return nil
}

// Save persists all boards as one JSON document. The write is atomic
// (temp file + rename) and retried with bounded exponential backoff. On
// exhaustion the error is logged and returned; in-memory state remains
// authoritative either way.
func (s *Store) Save(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	start := time.Now()
	defer observeSave(start)

	data, err := json.MarshalIndent(s.document(ctx), "", "  ")
	if err != nil {
		metrics.RecordStoreSaveError()
		return fmt.Errorf("encode board document: %w", err)
	}

	attempt := 0
	op := func() error {
		if attempt > 0 {
			metrics.RecordStoreSaveRetry()
		}
		attempt++
		return s.writeAtomic(data)
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		metrics.RecordStoreSaveError()
		s.logger.Error(ctx, "board document save failed, in-memory state remains authoritative",
			logger.String("path", s.path),
			logger.Int("attempts", attempt),
			logger.Error(err),
		)
		return fmt.Errorf("persist board document %s: %w", s.path, err)
	}

	metrics.RecordStoreSave()
	s.logger.Debug(ctx, "board document saved",
		logger.String("path", s.path),
		logger.Int("bytes", len(data)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over the destination.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".boards-*.json")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file to %s: %w", s.path, err)
	}
	return nil
}
