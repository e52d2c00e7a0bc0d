// Package store persists links. Uniqueness of codes and atomicity of click
// increments are delegated entirely to the backing store so that the
// guarantees hold across independent processes.
package store

import (
	"context"
	"errors"

	"golinks/internal/model"
)

// DefaultTopN is the leaderboard size when the caller does not ask for one.
const DefaultTopN = 10

var (
	// ErrCodeTaken is returned by TryCreate iff the code already exists.
	ErrCodeTaken = errors.New("short code already taken")
	// ErrNotFound is returned when the requested code has no link.
	ErrNotFound = errors.New("link not found")
)

// LinkStore is the narrow interface the allocation protocol and the
// resolution path depend on.
type LinkStore interface {
	// TryCreate inserts the link as a single atomic conditional insert.
	// It returns ErrCodeTaken when the code exists and never overwrites.
	TryCreate(ctx context.Context, link *model.Link) error

	// Get returns the link for code, or ErrNotFound.
	Get(ctx context.Context, code string) (*model.Link, error)

	// IncrementClicks applies a relative clicks = clicks + 1 update without
	// reading the current value first. Returns ErrNotFound when no row
	// matched.
	IncrementClicks(ctx context.Context, code string) error

	// Top returns up to n links ordered by clicks descending, ties broken
	// by code ascending. The ordering is deterministic for identical data.
	Top(ctx context.Context, n int) ([]model.Link, error)
}
