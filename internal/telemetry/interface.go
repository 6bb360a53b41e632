package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/picoctl/internal/governor"
)

// Collector records governor snapshots.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository is the storage backend behind a Collector.
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one governor status observation.
type Snapshot struct {
	Timestamp time.Time
	Status    governor.Status
}
