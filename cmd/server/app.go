package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Saurabhkg03/saraavdata-backend/internal/config"
	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/platform/groq"
	"github.com/Saurabhkg03/saraavdata-backend/internal/platform/youtube"
	"github.com/Saurabhkg03/saraavdata-backend/internal/store"
	"github.com/Saurabhkg03/saraavdata-backend/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger    *slog.Logger
	snapshots *store.Store

	// Event system
	queue   *events.Queue
	emitter *events.Emitter

	// Providers
	generator *groq.Generator
	searcher  *youtube.Searcher

	// Pipeline
	stop       *task.StopFlag
	controller *task.Controller

	// halt is closed when a stop request asks the whole process to shut
	// down; the HTTP server selects on it alongside OS signals.
	halt     chan struct{}
	haltOnce sync.Once
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts the configuration and logger that must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		halt:   make(chan struct{}),
	}

	var err error
	app.snapshots, err = store.New(cfg.Server.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	logger.Info("Snapshot store initialized", "data_dir", cfg.Server.DataDir)

	// Event queue and emitter connect the background walker to the
	// progress stream.
	app.queue = events.NewQueue()
	app.emitter = events.NewEmitter(app.queue, logger)

	app.stop = &task.StopFlag{}

	// Completion provider. An empty key pool still boots; calls fail
	// until keys are configured.
	app.generator, err = groq.NewGenerator(
		groq.Config{Model: cfg.Groq.Model},
		cfg.Groq.APIKeys,
		app.emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion generator: %w", err)
	}
	if len(cfg.Groq.APIKeys) == 0 {
		logger.Warn("No Groq API keys configured; solution generation will fail until keys are set")
	}

	app.searcher, err = youtube.NewSearcher(cfg.YouTube.APIKeys, app.emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize video searcher: %w", err)
	}
	if len(cfg.YouTube.APIKeys) == 0 {
		logger.Warn("No YouTube API keys configured; video search will fail until keys are set")
	}

	walkerCfg := task.DefaultWalkerConfig()
	walkerCfg.ForceRegenerateSolutions = cfg.Process.ForceRegenerateSolutions

	walker, err := task.NewWalker(
		app.generator,
		app.searcher,
		app.emitter,
		app.snapshots,
		app.stop,
		app.generator.Keys(),
		app.searcher.Keys(),
		walkerCfg,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create walker: %w", err)
	}

	app.controller, err = task.NewController(
		app.snapshots,
		walker,
		app.queue,
		app.emitter,
		app.stop,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create process controller: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// requestHalt asks the HTTP server to shut down. Safe to call more than
// once; only the first call closes the channel.
func (app *application) requestHalt() {
	app.haltOnce.Do(func() {
		close(app.halt)
	})
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// A walk still in flight winds down at its next checkpoint.
	app.stop.Set()

	app.logger.Info("Application shutdown completed")
}
