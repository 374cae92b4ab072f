// Package persistence stores conversion history and editor state per user.
package persistence

import (
	"context"
	"log/slog"

	"github.com/pricofy/omnicode/internal/domain"
)

// HistoryLimit caps the number of entries returned by GetHistory.
const HistoryLimit = 30

// Store is the persistence collaborator used by the client.
type Store interface {
	// GetHistory returns the user's conversions, most recent first, capped at HistoryLimit.
	GetHistory(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	// SaveConversion appends a conversion to the user's history.
	SaveConversion(ctx context.Context, userID string, entry domain.HistoryEntry) error
	// DeleteHistory removes all of the user's conversions.
	DeleteHistory(ctx context.Context, userID string) error
	// SaveState upserts the user's last editor state.
	SaveState(ctx context.Context, userID string, state domain.EditorState) error
	// GetState returns the user's last editor state, or nil when none is stored.
	GetState(ctx context.Context, userID string) (*domain.EditorState, error)
	// Configured reports whether writes actually persist.
	Configured() bool
	Close() error
}

// Open returns a SQL store for driver/dsn, or the no-op store when either is empty.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if driver == "" || dsn == "" {
		logger.Warn("persistence configuration incomplete; data will not persist")
		return Unconfigured{}, nil
	}

	s, err := OpenSQL(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Unconfigured is a Store that persists nothing. Reads return empty results
// and writes succeed.
type Unconfigured struct{}

func (Unconfigured) GetHistory(context.Context, string) ([]domain.HistoryEntry, error) {
	return []domain.HistoryEntry{}, nil
}

func (Unconfigured) SaveConversion(context.Context, string, domain.HistoryEntry) error {
	return nil
}

func (Unconfigured) DeleteHistory(context.Context, string) error {
	return nil
}

func (Unconfigured) SaveState(context.Context, string, domain.EditorState) error {
	return nil
}

func (Unconfigured) GetState(context.Context, string) (*domain.EditorState, error) {
	return nil, nil
}

func (Unconfigured) Configured() bool { return false }

func (Unconfigured) Close() error { return nil }
