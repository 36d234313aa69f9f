// Package storage defines the run-history storage interface.
package storage

import (
	"context"
)

// Storage persists analysis runs. Implementations must be safe for
// concurrent use by multiple goroutines.
type Storage interface {
	// StoreRun saves or updates a run by ID.
	StoreRun(ctx context.Context, run *Run) error
	// GetRun retrieves a run by ID, or nil when absent.
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}
