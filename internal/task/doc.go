// Package task runs the question-bank enrichment pipeline in the
// background. The Walker visits every question, attaching a video
// reference and a generated solution and flushing the snapshot after each
// mutation; the Controller guarantees at most one walk at a time and
// bridges it to the HTTP layer through the event queue, with a
// cooperative StopFlag for cancellation between steps.
package task
