package events

import (
	"fmt"
	"log/slog"
)

// Emitter is the single reporting surface for the processing pipeline. It
// publishes every event to the stream queue and mirrors it to the
// structured log, so the connected client and the server operator observe
// the same run without the pipeline knowing about either sink.
type Emitter struct {
	queue  *Queue
	logger *slog.Logger
}

// NewEmitter creates an Emitter writing to the given queue and logger.
func NewEmitter(queue *Queue, logger *slog.Logger) *Emitter {
	return &Emitter{
		queue:  queue,
		logger: logger.With("component", "event_emitter"),
	}
}

// Message emits a human-readable console line. Callers that relay provider
// errors scrub them first, so the emitter passes text through untouched and
// question content is never mangled by credential patterns.
func (e *Emitter) Message(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	e.queue.Put(Message{Text: text})
	e.logger.Info(text)
}

// Progress reports how far the walk has advanced.
func (e *Emitter) Progress(current, total int, activeStep string) {
	e.queue.Put(Progress{CurrentQ: current, TotalQs: total, ActiveStep: activeStep})
	e.logger.Debug("progress",
		"current_q", current,
		"total_qs", total,
		"active_step", activeStep)
}

// KeyStatus reports the state of one provider credential.
func (e *Emitter) KeyStatus(service string, position, total int, state KeyState) {
	e.queue.Put(APIKey{Service: service, Current: position, Total: total, Status: state})
	e.logger.Debug("api key status",
		"service", service,
		"current", position,
		"total", total,
		"status", string(state))
}

// Detail reports one display field for the question currently in flight.
func (e *Emitter) Detail(field, value string) {
	e.queue.Put(Detail{Field: field, Value: value})
	e.logger.Debug("question detail", "field", field, "value", value)
}

// ActiveStep names the pipeline step now running.
func (e *Emitter) ActiveStep(step string) {
	e.queue.Put(ActiveStep{Step: step})
	e.logger.Debug("active step", "step", step)
}

// RunStatus reports the terminal state of a finished run.
func (e *Emitter) RunStatus(value string) {
	e.queue.Put(Status{Value: value})
	e.logger.Info("run finished", "status", value)
}

// End marks the end of the stream for this run.
func (e *Emitter) End() {
	e.queue.Put(End{})
	e.logger.Debug("stream end")
}
