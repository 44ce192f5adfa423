// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers a YAML file and environment variables on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorePath is the JSON persistence file. Empty keeps all state
	// in memory.
	StorePath string `koanf:"store_path"`

	// PersistMaxRetries bounds the save retry loop.
	PersistMaxRetries int `koanf:"persist_max_retries"`

	// NotifyQueueSize bounds the in-memory transition event queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkerCount sets the number of delivery workers.
	NotifyWorkerCount int `koanf:"notify_worker_count"`

	// BottleneckThreshold flags unlimited columns holding more cards
	// than this.
	BottleneckThreshold int `koanf:"bottleneck_threshold"`

	// MaxSearchResults caps card search result sets.
	MaxSearchResults int `koanf:"max_search_results"`

	// DefaultWIPLimits seeds new boards with per-column limits,
	// keyed by column name. Zero means unlimited.
	DefaultWIPLimits map[string]int `koanf:"default_wip_limits"`

	// Factor weights for backlog prioritization. They should sum to 1.
	CustomerValueWeight float64 `koanf:"customer_value_weight"`
	UnblockWeight       float64 `koanf:"unblock_weight"`
	WorkerWeight        float64 `koanf:"worker_weight"`
	LearningWeight      float64 `koanf:"learning_weight"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StorePath:           "boards.json",
		PersistMaxRetries:   3,
		NotifyQueueSize:     1024,
		NotifyWorkerCount:   1,
		BottleneckThreshold: 10,
		MaxSearchResults:    200,
		DefaultWIPLimits: map[string]int{
			"in_progress": 3,
			"review":      2,
		},
		CustomerValueWeight: 0.4,
		UnblockWeight:       0.3,
		WorkerWeight:        0.2,
		LearningWeight:      0.1,
	}
}
