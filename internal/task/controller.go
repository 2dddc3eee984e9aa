package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Saurabhkg03/saraavdata-backend/internal/domain"
	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/store"
)

// Controller errors
var (
	ErrNilStore  = errors.New("snapshot store cannot be nil")
	ErrNilWalker = errors.New("walker cannot be nil")
	ErrNilQueue  = errors.New("event queue cannot be nil")
)

// SnapshotStore is the persistence surface the controller drives: resume
// detection, loading, and the final save.
type SnapshotStore interface {
	SnapshotSaver
	HasOutput() bool
	LoadInput() (*domain.QuestionBank, error)
	LoadOutput() (*domain.QuestionBank, error)
}

// Controller owns the single background worker that runs the Walker.
// Start is a no-op while a run is active, so any number of stream
// subscribers share one worker; Stop only raises the cooperative flag.
type Controller struct {
	store   SnapshotStore
	walker  *Walker
	queue   *events.Queue
	emitter *events.Emitter
	stop    *StopFlag
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewController creates a Controller.
func NewController(
	snapshots SnapshotStore,
	walker *Walker,
	queue *events.Queue,
	emitter *events.Emitter,
	stop *StopFlag,
	logger *slog.Logger,
) (*Controller, error) {
	if snapshots == nil {
		return nil, ErrNilStore
	}
	if walker == nil {
		return nil, ErrNilWalker
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if stop == nil {
		return nil, ErrNilStopFlag
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Controller{
		store:   snapshots,
		walker:  walker,
		queue:   queue,
		emitter: emitter,
		stop:    stop,
		logger:  logger.With("component", "process_controller"),
	}, nil
}

// Start launches a background run unless one is already active and
// reports whether a new worker was spawned. Spawning a fresh run clears a
// leftover stop request and drops stale events still queued from the
// previous run; joining an active run touches neither.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return false
	}

	c.stop.Clear()
	if dropped := c.queue.Drain(); dropped > 0 {
		c.logger.Debug("dropped stale events from previous run", "count", dropped)
	}

	c.running = true
	go c.run()
	return true
}

// Stop requests cooperative cancellation. The walker observes the flag at
// its checkpoints, so an in-flight provider call still runs to completion.
func (c *Controller) Stop() {
	c.stop.Set()
	c.logger.Info("stop requested")
}

// Running reports whether a background run is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// run executes one full processing run. The end-of-stream sentinel is
// emitted on every exit path so stream consumers always terminate.
func (c *Controller) run() {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()
	defer c.emitter.End()

	runID := uuid.New().String()
	logger := c.logger.With("run_id", runID)
	logger.Info("processing run starting")

	bank := c.load()
	if bank == nil {
		return
	}

	result := c.walker.Run(context.Background(), bank)

	if err := c.store.SaveOutput(bank); err != nil {
		c.emitter.Message("Error saving file: %v", err)
		logger.Error("final snapshot save failed", "error", err)
	}

	logger.Info("processing run finished",
		"cancelled", result.Cancelled,
		"anomalies", len(result.Anomalies))
}

// load prefers resuming from a previous run's output snapshot and falls
// back to the uploaded input. Returns nil after reporting when neither
// loads; the stream still terminates normally in that case.
func (c *Controller) load() *domain.QuestionBank {
	if c.store.HasOutput() {
		c.emitter.Message("Resuming from: %s", store.OutputFileName)
		bank, err := c.store.LoadOutput()
		if err == nil {
			return bank
		}
		c.emitter.Message("Could not read %s: %v", store.OutputFileName, err)
		c.logger.Warn("output snapshot unreadable, falling back to input", "error", err)
	}

	c.emitter.Message("Loading fresh input: %s", store.InputFileName)
	bank, err := c.store.LoadInput()
	if err != nil {
		c.emitter.Message("Could not read %s: %v", store.InputFileName, err)
		c.emitter.Message("Exiting: could not load data.")
		c.logger.Error("no loadable snapshot", "error", err)
		return nil
	}
	return bank
}
