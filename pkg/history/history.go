// Package history records Graphviz invocations made through the HTTP server.
//
// Each completed run becomes a Record. The server keeps recent records in a
// MemoryStore by default, or persists them to MongoDB when a URI is
// configured, and serves them from GET /v1/history.
package history

import (
	"context"
	"time"
)

// Record describes one subprocess run.
type Record struct {
	ID         string        `json:"id" bson:"_id"`
	Args       []string      `json:"args" bson:"args"`
	ExitCode   int           `json:"exit_code" bson:"exit_code"`
	Duration   time.Duration `json:"duration_ns" bson:"duration_ns"`
	InputSize  int           `json:"input_size" bson:"input_size"`
	OutputSize int           `json:"output_size" bson:"output_size"`
	Error      string        `json:"error,omitempty" bson:"error,omitempty"`
	Cached     bool          `json:"cached" bson:"cached"`
	StartedAt  time.Time     `json:"started_at" bson:"started_at"`
}

// Store persists records.
type Store interface {
	// Add stores r.
	Add(ctx context.Context, r Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	Close(ctx context.Context) error
}
