// Package events carries live progress out of the processing pipeline.
//
// The pipeline reports everything it does through an Emitter, which fans
// each event out to two sinks: an unbounded Queue consumed by the HTTP
// stream handler, and the structured log. This keeps the pipeline free of
// any knowledge of HTTP or logging while giving both audiences an
// identical view of a run.
//
// The primary components are:
// - Event: the marker interface for everything on the stream, each type
//   marshalling itself into its exact wire shape
// - Queue: a FIFO whose producers never block
// - Emitter: the single reporting surface used by the pipeline
package events
