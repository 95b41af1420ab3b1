package storage

import (
	"context"
	"time"
)

// Provision records one binary-provisioning pass.
type Provision struct {
	ID      string `json:"id"`
	Server  string `json:"server"`
	Version string `json:"version"`
	Path    string `json:"path"`
	Reused  bool   `json:"reused"`

	// CleanupFailures counts stale-version removals that failed during the
	// pass. Such failures never fail provisioning, so this is the only
	// place they are durably visible.
	CleanupFailures int       `json:"cleanup_failures"`
	CreatedAt       time.Time `json:"created_at"`
}

// Launch records one assembled command descriptor. Environment variables are
// deliberately not persisted; they carry credentials.
type Launch struct {
	ID        string    `json:"id"`
	Server    string    `json:"server"`
	Path      string    `json:"path"`
	Args      []string  `json:"args"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions controls filtering and pagination for history queries.
type ListOptions struct {
	Server string
	Limit  int
	Offset int
}

// Store is the persistence interface for provisioning and launch history.
type Store interface {
	// RecordProvision inserts a provision record. The ID field must be set
	// by the caller.
	RecordProvision(ctx context.Context, p *Provision) error

	// ListProvisions returns provision records ordered by created_at
	// descending.
	ListProvisions(ctx context.Context, opts ListOptions) ([]Provision, error)

	// RecordLaunch inserts a launch record. The ID field must be set by the
	// caller.
	RecordLaunch(ctx context.Context, l *Launch) error

	// ListLaunches returns launch records ordered by created_at descending.
	ListLaunches(ctx context.Context, opts ListOptions) ([]Launch, error)

	// Close releases resources.
	Close() error
}
