package storage

import (
	"context"
	"sync"

	"EchoFM/model"
)

// MemoryStore is an in-process Store used by tests and the CLI tooling.
type MemoryStore struct {
	mu           sync.Mutex
	stores       map[string]map[string][]byte
	history      []model.HistoryEntry // Newest first
	favorites    map[int64]struct{}
	historyLimit int
}

// NewMemoryStore creates a MemoryStore retaining at most historyLimit
// entries (<= 0 means unbounded).
func NewMemoryStore(historyLimit int) *MemoryStore {
	return &MemoryStore{
		stores:       make(map[string]map[string][]byte),
		favorites:    make(map[int64]struct{}),
		historyLimit: historyLimit,
	}
}

func (m *MemoryStore) Get(ctx context.Context, store, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.stores[store]
	if !ok {
		return nil, ErrNotFound
	}
	val, ok := kv[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, store, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.stores[store]
	if !ok {
		kv = make(map[string][]byte)
		m.stores[store] = kv
	}
	val := make([]byte, len(value))
	copy(val, value)
	kv[key] = val
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, store, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kv, ok := m.stores[store]; ok {
		delete(kv, key)
	}
	return nil
}

func (m *MemoryStore) AppendHistory(ctx context.Context, entry model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]model.HistoryEntry{entry}, m.history...)
	if m.historyLimit > 0 && len(m.history) > m.historyLimit {
		m.history = m.history[:m.historyLimit]
	}
	return nil
}

func (m *MemoryStore) UpdateHistoryProgress(ctx context.Context, trackID int64, progress float64, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].TrackID == trackID {
			m.history[i].Progress = progress
			m.history[i].Completed = completed
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) RecentHistory(ctx context.Context, n int) ([]model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.history) {
		n = len(m.history)
	}
	out := make([]model.HistoryEntry, n)
	copy(out, m.history[:n])
	return out, nil
}

func (m *MemoryStore) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	return nil
}

func (m *MemoryStore) AddFavorite(ctx context.Context, trackID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[trackID] = struct{}{}
	return nil
}

func (m *MemoryStore) RemoveFavorite(ctx context.Context, trackID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, trackID)
	return nil
}

func (m *MemoryStore) Favorites(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.favorites))
	for id := range m.favorites {
		out = append(out, id)
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
