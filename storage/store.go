package storage

import (
	"context"
	"errors"

	"EchoFM/model"
)

// Named stores the engine persists into. Each behaves as an isolated
// key-value namespace.
const (
	StoreFavorites     = "favorites"
	StoreHistory       = "history"
	StorePlaybackState = "playbackState"
	StoreAudioSettings = "audioSettings"
	StoreGamification  = "gamificationData"
)

// ErrNotFound is returned by Get when a key has never been set.
var ErrNotFound = errors.New("storage: key not found")

// Store is the engine's local persistence interface, Redis- or memory-backed.
// A corrupted or unavailable store must degrade to "no data", never block
// playback; callers log and move on.
type Store interface {
	// Get returns the value for key in the named store, or ErrNotFound.
	Get(ctx context.Context, store, key string) ([]byte, error)
	// Set writes the value for key in the named store.
	Set(ctx context.Context, store, key string, value []byte) error
	// Delete removes the key; deleting a missing key is not an error.
	Delete(ctx context.Context, store, key string) error

	// AppendHistory appends a listen event, pruning past the retention cap.
	AppendHistory(ctx context.Context, entry model.HistoryEntry) error
	// UpdateHistoryProgress updates the most recent entry for trackID.
	UpdateHistoryProgress(ctx context.Context, trackID int64, progress float64, completed bool) error
	// RecentHistory returns up to n entries, newest first.
	RecentHistory(ctx context.Context, n int) ([]model.HistoryEntry, error)
	// ClearHistory drops all history entries.
	ClearHistory(ctx context.Context) error

	// AddFavorite marks a track as favorite; adding twice is a no-op.
	AddFavorite(ctx context.Context, trackID int64) error
	// RemoveFavorite unmarks a track; removing a non-favorite is a no-op.
	RemoveFavorite(ctx context.Context, trackID int64) error
	// Favorites lists favorite track ids in no particular order.
	Favorites(ctx context.Context) ([]int64, error)

	Close() error
}
