// Package store persists question bank snapshots on the local filesystem.
// The data directory holds exactly two documents: the uploaded input and
// the progressively enriched output the pipeline flushes after every
// successful mutation. Keeping persistence behind this package lets the
// rest of the application stay ignorant of file layout and atomicity
// details.
package store
