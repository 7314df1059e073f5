package testsupport

import (
	"path/filepath"
	"testing"

	"cama/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SinkPath = filepath.Join(base, "sync", "outbox.json")
	cfg.Sync.BatchSize = 50
	cfg.Sync.FlushInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBatchSize overrides the flush batch size on the test config.
func WithBatchSize(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.BatchSize = n
	}
}

// WithSinkPath overrides the sink file location on the test config.
func WithSinkPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.SinkPath = path
	}
}
