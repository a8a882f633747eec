package session

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoFM/core/audio"
	"EchoFM/model"
	"EchoFM/storage"
)

// silentDecoder yields a fixed-length silent buffer for any input.
type silentDecoder struct{ frames int }

func (d *silentDecoder) Decode(ctx context.Context, r io.Reader) (*audio.Buffer, error) {
	samples := [][]float64{make([]float64, d.frames), make([]float64, d.frames)}
	return &audio.Buffer{Samples: samples, SampleRate: 44100}, nil
}

type fixture struct {
	session   *Session
	transport *audio.Transport
	clock     *audio.ManualClock
	store     *storage.MemoryStore
	tracks    []*model.Track
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tracks := []*model.Track{
		{ID: 1, Title: "One", Artist: "A", AudioURL: "mem://1", Duration: 10},
		{ID: 2, Title: "Two", Artist: "B", AudioURL: "mem://2", Duration: 10},
		{ID: 3, Title: "Three", Artist: "C", AudioURL: "mem://3", Duration: 10},
	}
	fetcher := storage.NewMemFetcher()
	for _, tr := range tracks {
		fetcher.Put(tr.AudioURL, []byte{0})
	}

	clock := audio.NewManualClock()
	transport := audio.NewTransport(audio.TransportConfig{
		SampleRate: 44100,
		Fetcher:    fetcher,
		Decoder:    &silentDecoder{frames: 10 * 44100},
		Clock:      clock,
	})
	store := storage.NewMemoryStore(50)
	sess := NewSession(Config{
		Transport:    transport,
		Store:        store,
		PollInterval: time.Hour, // Poller idle; tests drive state directly
		Rand:         rand.New(rand.NewSource(7)),
	})
	t.Cleanup(sess.Close)
	return &fixture{session: sess, transport: transport, clock: clock, store: store, tracks: tracks}
}

func (f *fixture) currentID(t *testing.T) int64 {
	t.Helper()
	snap := f.session.State()
	require.NotNil(t, snap.Track)
	return snap.Track.ID
}

func TestPlayTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[1], f.tracks))

	snap := f.session.State()
	assert.Equal(t, int64(2), snap.Track.ID)
	assert.Equal(t, 1, snap.Index)
	assert.True(t, snap.Playing)
	assert.Len(t, snap.Playlist, 3)

	t.Run("track outside playlist defaults to index 0", func(t *testing.T) {
		stray := &model.Track{ID: 99, Title: "Stray", AudioURL: "mem://1", Duration: 10}
		require.NoError(t, f.session.PlayTrack(ctx, stray, nil))
		assert.Equal(t, 0, f.session.State().Index)
	})
}

func TestPlayNext(t *testing.T) {
	ctx := context.Background()

	t.Run("advances in order", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))
		require.NoError(t, f.session.PlayNext(ctx))
		assert.Equal(t, int64(2), f.currentID(t))
	})

	t.Run("repeat one replays in place", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))
		f.session.SetRepeatMode(model.RepeatOne)
		require.NoError(t, f.session.PlayNext(ctx))
		assert.Equal(t, int64(1), f.currentID(t))
	})

	t.Run("end of playlist with repeat off is a no-op", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[2], f.tracks))
		require.NoError(t, f.session.PlayNext(ctx))
		assert.Equal(t, int64(3), f.currentID(t))
		assert.Equal(t, 2, f.session.State().Index)
	})

	t.Run("end of playlist with repeat all wraps", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[2], f.tracks))
		f.session.SetRepeatMode(model.RepeatAll)
		require.NoError(t, f.session.PlayNext(ctx))
		assert.Equal(t, int64(1), f.currentID(t))
	})

	t.Run("empty playlist is a no-op", func(t *testing.T) {
		f := newFixture(t)
		assert.NoError(t, f.session.PlayNext(ctx))
	})
}

func TestPlayPrevious(t *testing.T) {
	ctx := context.Background()

	t.Run("steps back", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[1], f.tracks))
		require.NoError(t, f.session.PlayPrevious(ctx))
		assert.Equal(t, int64(1), f.currentID(t))
	})

	t.Run("wraps from the first track", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))
		require.NoError(t, f.session.PlayPrevious(ctx))
		assert.Equal(t, int64(3), f.currentID(t))
	})
}

func TestTogglePlayPause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Error(t, f.session.TogglePlayPause(), "nothing loaded")

	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))
	require.NoError(t, f.session.TogglePlayPause())
	assert.False(t, f.session.State().Playing)
	require.NoError(t, f.session.TogglePlayPause())
	assert.True(t, f.session.State().Playing)
}

func TestToggleShuffle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[1], f.tracks))

	before := f.session.State()

	enabled := f.session.ToggleShuffle()
	assert.True(t, enabled)

	shuffled := f.session.State()
	assert.True(t, shuffled.Shuffle)
	assert.Len(t, shuffled.Playlist, 3)
	// The playing track never changes, only its index.
	assert.Equal(t, int64(2), shuffled.Track.ID)
	assert.Equal(t, int64(2), shuffled.Playlist[shuffled.Index].ID)

	enabled = f.session.ToggleShuffle()
	assert.False(t, enabled)

	restored := f.session.State()
	require.Len(t, restored.Playlist, 3)
	for i := range before.Playlist {
		assert.Equal(t, before.Playlist[i].ID, restored.Playlist[i].ID, "original order restored")
	}
	assert.Equal(t, int64(2), restored.Playlist[restored.Index].ID)
}

func TestSeekAndVolume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))

	require.NoError(t, f.session.Seek(4))
	assert.InDelta(t, 4.0, f.session.State().Position, 1e-9)

	f.session.SetVolume(0.25)
	assert.Equal(t, 0.25, f.session.State().Volume)
}

func TestApplySettingsPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := model.DefaultAudioSettings()
	s.EQ.Enabled = true
	s.EQ.Gains = append([]float64(nil), model.EQPresets["bassBoost"]...)
	require.NoError(t, f.session.ApplySettings(ctx, s))

	raw, err := f.store.Get(ctx, storage.StoreAudioSettings, "current")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	restored := f.session.RestoreSettings(ctx)
	assert.True(t, restored.EQ.Enabled)
	assert.Equal(t, 8.0, restored.EQ.Gains[0])
}

func TestHistoryRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))

	// History appends asynchronously.
	require.Eventually(t, func() bool {
		entries, err := f.store.RecentHistory(ctx, 10)
		return err == nil && len(entries) == 1
	}, time.Second, 10*time.Millisecond)

	entries, err := f.store.RecentHistory(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entries[0].TrackID)
	assert.NotEmpty(t, entries[0].SessionID)
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.AddFavorite(ctx, f.tracks[0]))
	require.NoError(t, f.session.AddFavorite(ctx, f.tracks[1]))

	favs, err := f.session.Favorites(ctx)
	require.NoError(t, err)
	assert.Len(t, favs, 2)

	require.NoError(t, f.session.RemoveFavorite(ctx, f.tracks[0]))
	favs, err = f.session.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, favs)
}

func TestRestorePlayback(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		f := newFixture(t)
		assert.Nil(t, f.session.RestorePlayback(ctx))
	})

	t.Run("snapshot reapplied", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.PlayTrack(ctx, f.tracks[1], f.tracks))
		f.session.SetRepeatMode(model.RepeatAll)
		f.session.SetVolume(0.5)

		// A second session over the same store picks the state back up.
		resumed := NewSession(Config{
			Transport: audio.NewTransport(audio.TransportConfig{
				SampleRate: 44100,
				Fetcher:    storage.NewMemFetcher(),
				Decoder:    &silentDecoder{frames: 44100},
				Clock:      audio.NewManualClock(),
			}),
			Store:        f.store,
			PollInterval: time.Hour,
		})
		defer resumed.Close()

		snap := resumed.RestorePlayback(ctx)
		require.NotNil(t, snap)
		assert.Equal(t, int64(2), snap.TrackID)
		state := resumed.State()
		assert.Equal(t, model.RepeatAll, state.RepeatMode)
		assert.Equal(t, 0.5, state.Volume)
	})
}

func TestPlaybackSnapshotPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.session.PlayTrack(ctx, f.tracks[0], f.tracks))
	f.session.SetRepeatMode(model.RepeatAll)

	raw, err := f.store.Get(ctx, storage.StorePlaybackState, "current")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"repeatMode":"all"`)
}
