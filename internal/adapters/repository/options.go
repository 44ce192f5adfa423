package repository

import (
	"github.com/okian/flowboard/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPath sets the JSON document path. An empty path keeps the store
// purely in-memory, which tests rely on for isolation.
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// WithMaxRetries bounds how often a failed persistence write is retried.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = uint64(n)
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
