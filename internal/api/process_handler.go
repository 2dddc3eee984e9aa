package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Saurabhkg03/saraavdata-backend/internal/api/shared"
	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/platform/logger"
	"github.com/Saurabhkg03/saraavdata-backend/internal/task"
)

// haltDelay is how long the stop endpoint waits after acknowledging
// before asking the host process to exit. The gap lets the response and
// any final stream frames reach the client.
const haltDelay = 500 * time.Millisecond

// StopResponse acknowledges a shutdown request.
type StopResponse struct {
	Message string `json:"message"`
}

// ProcessHandler handles the enrichment run endpoints: the event stream
// that starts a run, and the stop endpoint that ends one.
type ProcessHandler struct {
	controller *task.Controller
	queue      *events.Queue
	halt       func()
	haltAfter  time.Duration
	logger     *slog.Logger
}

// NewProcessHandler creates a new ProcessHandler. halt is called shortly
// after a stop request has been acknowledged; the server uses it to begin
// a full shutdown.
func NewProcessHandler(
	controller *task.Controller,
	queue *events.Queue,
	halt func(),
	logger *slog.Logger,
) *ProcessHandler {
	if controller == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("controller cannot be nil for ProcessHandler")
	}
	if queue == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("event queue cannot be nil for ProcessHandler")
	}
	if halt == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("halt func cannot be nil for ProcessHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProcessHandler")
	}

	return &ProcessHandler{
		controller: controller,
		queue:      queue,
		halt:       halt,
		haltAfter:  haltDelay,
		logger:     logger.With(slog.String("component", "process_handler")),
	}
}

// Stream handles GET /process requests. It starts a processing run if none
// is active, then serves the event queue as Server-Sent Events until the
// run ends or the client disconnects.
func (h *ProcessHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	started := h.controller.Start()
	log.Info("stream opened", slog.Bool("started_run", started))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The first frame confirms the subscription before any run events
	// arrive.
	if !h.writeFrame(w, flusher, log, events.Message{Text: "Connected to server stream..."}) {
		return
	}

	for {
		e, err := h.queue.Get(r.Context())
		if err != nil {
			log.Debug("stream consumer disconnected", slog.String("error", err.Error()))
			return
		}
		if events.IsEnd(e) {
			h.writeFrame(w, flusher, log, e)
			log.Info("stream finished")
			return
		}
		if !h.writeFrame(w, flusher, log, e) {
			return
		}
	}
}

// writeFrame sends one event as an SSE data frame. It reports false when
// the client has gone away.
func (h *ProcessHandler) writeFrame(
	w http.ResponseWriter,
	flusher http.Flusher,
	log *slog.Logger,
	e events.Event,
) bool {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error("failed to marshal stream event", slog.String("error", err.Error()))
		return true
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		log.Debug("stream write failed, client likely disconnected",
			slog.String("error", err.Error()))
		return false
	}
	flusher.Flush()
	return true
}

// Stop handles POST /stop requests. It raises the cooperative stop flag
// for the active run, acknowledges immediately, and schedules the host
// process to halt shortly after.
func (h *ProcessHandler) Stop(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	h.controller.Stop()
	log.Info("halt requested")

	go func() {
		time.Sleep(h.haltAfter)
		h.halt()
	}()

	shared.RespondWithJSON(w, r, http.StatusOK, StopResponse{
		Message: "Backend server is halting completely.",
	})
}
