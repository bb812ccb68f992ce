// Package store provides the local CVE cache backing the dashboard and
// the nightly refresh job. The chat dispatcher never reads this cache:
// every accepted submission issues exactly one live backend call.
package store

import (
	"context"
	"time"

	"github.com/vulnwatch/cyberrag/internal/domain"
)

// Repository is the persistence interface for cached CVE records.
type Repository interface {
	// GetCVE returns a cached record no older than maxAge, or nil when
	// the cache has no fresh entry for the identifier.
	GetCVE(ctx context.Context, id string, maxAge time.Duration) (*domain.CVERecord, error)

	// UpsertCVEs inserts or replaces a batch of records, stamping them
	// with the current fetch time.
	UpsertCVEs(ctx context.Context, records []domain.CVERecord) error

	// PruneOlderThan removes entries fetched more than age ago and
	// returns how many rows were deleted.
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// LastRefresh returns when the refresh job last completed, or the
	// zero time when it never ran.
	LastRefresh(ctx context.Context) (time.Time, error)

	// SetLastRefresh records a refresh completion time.
	SetLastRefresh(ctx context.Context, t time.Time) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
