package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FLOWBOARD_CONFIG is set
//  3. env (prefix FLOWBOARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FLOWBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like FLOWBOARD_NOTIFY_QUEUE_SIZE -> notify_queue_size.
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("FLOWBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "flowboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.NotifyQueueSize <= 0:
		return fmt.Errorf("%w: notify_queue_size must be positive", ErrInvalidConfig)
	case c.NotifyWorkerCount <= 0:
		return fmt.Errorf("%w: notify_worker_count must be positive", ErrInvalidConfig)
	case c.PersistMaxRetries < 0:
		return fmt.Errorf("%w: persist_max_retries must not be negative", ErrInvalidConfig)
	case c.BottleneckThreshold <= 0:
		return fmt.Errorf("%w: bottleneck_threshold must be positive", ErrInvalidConfig)
	case c.MaxSearchResults <= 0:
		return fmt.Errorf("%w: max_search_results must be positive", ErrInvalidConfig)
	}
	sum := c.CustomerValueWeight + c.UnblockWeight + c.WorkerWeight + c.LearningWeight
	if sum <= 0 {
		return fmt.Errorf("%w: factor weights must sum to a positive value", ErrInvalidConfig)
	}
	return nil
}
