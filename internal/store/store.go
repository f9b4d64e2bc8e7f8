package store

import (
	"context"
	"errors"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

// ErrBreakNotFound is returned when no surf break matches the requested name.
var ErrBreakNotFound = errors.New("surf break not found")

// BreakStore is the read-only lookup interface over seeded surf break records.
type BreakStore interface {
	// GetByName returns the break whose name matches case-insensitively.
	// Returns ErrBreakNotFound when there is no match.
	GetByName(ctx context.Context, name string) (models.SurfBreak, error)
	// ListStates returns the distinct states ascending.
	ListStates(ctx context.Context) ([]string, error)
	// ListBreaks returns a page of break summaries ordered by state then name,
	// plus the total record count independent of paging.
	ListBreaks(ctx context.Context, limit, offset int) ([]models.BreakSummary, int, error)
	// ListBreakNamesByState returns break names for a state, sorted.
	ListBreakNamesByState(ctx context.Context, state string) ([]string, error)
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}
