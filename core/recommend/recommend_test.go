package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoFM/model"
	"EchoFM/storage"
)

func TestSimilarity(t *testing.T) {
	base := &model.Track{ID: 1, Artist: "Nila", Category: "ambient", Tags: []string{"chill", "night"}, Duration: 200}

	t.Run("identical metadata caps at 1", func(t *testing.T) {
		twin := &model.Track{ID: 2, Artist: "Nila", Category: "ambient", Tags: []string{"chill", "night"}, Duration: 200}
		// 0.4 + 0.2 + 0.2 + 0.3 = 1.1, capped
		assert.Equal(t, 1.0, Similarity(base, twin))
	})

	t.Run("category only", func(t *testing.T) {
		other := &model.Track{ID: 2, Artist: "X", Category: "Ambient", Duration: 500}
		assert.InDelta(t, 0.4, Similarity(base, other), 1e-9)
	})

	t.Run("shared tags count once each", func(t *testing.T) {
		other := &model.Track{ID: 2, Artist: "X", Category: "rock", Tags: []string{"chill", "Chill", "night"}, Duration: 500}
		assert.InDelta(t, 0.2, Similarity(base, other), 1e-9)
	})

	t.Run("duration window", func(t *testing.T) {
		near := &model.Track{ID: 2, Artist: "X", Category: "rock", Duration: 229}
		far := &model.Track{ID: 3, Artist: "X", Category: "rock", Duration: 230}
		assert.InDelta(t, 0.2, Similarity(base, near), 1e-9)
		assert.Zero(t, Similarity(base, far))
	})

	t.Run("artist match", func(t *testing.T) {
		other := &model.Track{ID: 2, Artist: "nila", Category: "rock", Duration: 500}
		assert.InDelta(t, 0.3, Similarity(base, other), 1e-9)
	})

	t.Run("empty fields never match", func(t *testing.T) {
		a := &model.Track{ID: 1, Duration: 1000}
		b := &model.Track{ID: 2, Duration: 2000}
		assert.Zero(t, Similarity(a, b))
	})
}

func TestForTrack(t *testing.T) {
	seed := &model.Track{ID: 1, Artist: "Nila", Category: "ambient", Duration: 200}
	all := []*model.Track{
		seed,
		{ID: 2, Artist: "Nila", Category: "ambient", Duration: 210},  // 0.9
		{ID: 3, Artist: "Kato", Category: "ambient", Duration: 500},  // 0.4
		{ID: 4, Artist: "Vexa", Category: "metal", Duration: 1000},   // 0
		{ID: 5, Artist: "Mori", Category: "ambient", Duration: 1000}, // 0.4
	}

	recs := ForTrack(seed, all, 0)
	require.Len(t, recs, 3, "seed and zero scores dropped")
	assert.Equal(t, int64(2), recs[0].Track.ID)
	// Tied 0.4 scores keep catalog order.
	assert.Equal(t, int64(3), recs[1].Track.ID)
	assert.Equal(t, int64(5), recs[2].Track.ID)

	limited := ForTrack(seed, all, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(2), limited[0].Track.ID)
}

// failingStore errors on every operation.
type failingStore struct {
	storage.Store
}

func (failingStore) RecentHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	return nil, errors.New("store down")
}

func TestPersonalized(t *testing.T) {
	catalog := []*model.Track{
		{ID: 1, Artist: "Nila", Category: "ambient", Duration: 200, PlayCount: 10},
		{ID: 2, Artist: "Nila", Category: "ambient", Duration: 210, PlayCount: 50},
		{ID: 3, Artist: "Kato", Category: "electronic", Duration: 190, PlayCount: 90},
		{ID: 4, Artist: "Kato", Category: "electronic", Duration: 170, PlayCount: 20},
		{ID: 5, Artist: "Mori", Category: "lofi", Duration: 400, PlayCount: 90},
	}

	t.Run("empty history falls back to play count", func(t *testing.T) {
		engine := NewEngine(storage.NewMemoryStore(10))
		recs := engine.Personalized(context.Background(), catalog, 0)
		require.Len(t, recs, 5)
		// Tied play counts keep catalog order.
		assert.Equal(t, int64(3), recs[0].Track.ID)
		assert.Equal(t, int64(5), recs[1].Track.ID)
		assert.Equal(t, float64(90), recs[0].Score)
	})

	t.Run("store failure falls back to play count", func(t *testing.T) {
		engine := NewEngine(failingStore{})
		recs := engine.Personalized(context.Background(), catalog, 2)
		require.Len(t, recs, 2)
		assert.Equal(t, int64(3), recs[0].Track.ID)
	})

	t.Run("history drives similarity aggregation", func(t *testing.T) {
		store := storage.NewMemoryStore(10)
		engine := NewEngine(store)

		require.NoError(t, store.AppendHistory(context.Background(), model.HistoryEntry{TrackID: 1}))
		require.NoError(t, store.AppendHistory(context.Background(), model.HistoryEntry{TrackID: 1}))

		recs := engine.Personalized(context.Background(), catalog, 0)
		require.NotEmpty(t, recs)

		// Track 2 shares artist, category, and duration with the seed.
		assert.Equal(t, int64(2), recs[0].Track.ID)
		for _, rec := range recs {
			assert.NotEqual(t, int64(1), rec.Track.ID, "history tracks excluded")
		}
	})

	t.Run("multiple seeds accumulate", func(t *testing.T) {
		store := storage.NewMemoryStore(10)
		engine := NewEngine(store)

		require.NoError(t, store.AppendHistory(context.Background(), model.HistoryEntry{TrackID: 3}))
		require.NoError(t, store.AppendHistory(context.Background(), model.HistoryEntry{TrackID: 1}))

		recs := engine.Personalized(context.Background(), catalog, 0)
		require.NotEmpty(t, recs)

		scores := map[int64]float64{}
		for _, rec := range recs {
			scores[rec.Track.ID] = rec.Score
		}
		// Track 2 earns 0.9 against seed 1 plus 0.2 duration credit against
		// seed 3; track 4 only scores against seed 3.
		assert.Greater(t, scores[2], scores[4])
	})
}
