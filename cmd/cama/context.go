package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cama/internal/config"
	"cama/internal/logging"
	"cama/internal/mapview"
	"cama/internal/meter"
	"cama/internal/outbox"
	"cama/internal/registry"
	"cama/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app bundles the wired services a command needs. Built per invocation so
// every command opens and closes its own store handle.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	queue    *outbox.Queue
	sink     *outbox.FileSink
	flusher  *outbox.Flusher
	registry *registry.Registry
	recorder *registry.Recorder
	resolver *mapview.Resolver
	meter    meter.ReadingSource
}

// withApp opens the store, wires services, runs fn, and tears down.
func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := c.fileLogger(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	queue := outbox.NewQueue(st)
	sink := outbox.NewFileSink(cfg.Paths.SinkPath)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		queue:    queue,
		sink:     sink,
		flusher:  outbox.NewFlusher(queue, sink, logger, cfg.Sync.BatchSize),
		registry: registry.NewRegistry(st, logger),
		recorder: registry.NewRecorder(st, queue, logger),
		resolver: mapview.NewResolver(st, logger),
		meter:    meter.NewSimulated(cfg.Meter.Seed),
	}
	return fn(a)
}

// fileLogger logs to the configured log file only, keeping command output
// reserved for the command's own results.
func (c *commandContext) fileLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.Paths.LogDir == "" {
		return logging.NewNop(), nil
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "cama.log")},
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
