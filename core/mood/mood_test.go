package mood

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoFM/model"
)

func TestDetect(t *testing.T) {
	t.Run("fallback on no signal", func(t *testing.T) {
		track := &model.Track{Title: "Untitled 7", Artist: "Unknown", Category: "noise", Duration: 200}
		scores := Detect(track)
		require.Len(t, scores, 1)
		assert.Equal(t, model.MoodCalm, scores[0].Mood)
		assert.Equal(t, 0.5, scores[0].Confidence)
	})

	t.Run("category contributes 0.3", func(t *testing.T) {
		track := &model.Track{Title: "Untitled", Artist: "X", Category: "rock", Duration: 200}
		assert.InDelta(t, 0.3, Confidence(track, model.MoodEnergetic), 1e-9)
	})

	t.Run("keywords contribute 0.2 each", func(t *testing.T) {
		// "sad" and "rain" are both melancholic keywords.
		track := &model.Track{Title: "Sad Rain", Artist: "X", Category: "noise", Duration: 200}
		assert.InDelta(t, 0.4, Confidence(track, model.MoodMelancholic), 1e-9)
	})

	t.Run("tags are searched", func(t *testing.T) {
		track := &model.Track{Title: "Untitled", Artist: "X", Category: "noise", Tags: []string{"workout"}, Duration: 200}
		assert.InDelta(t, 0.2, Confidence(track, model.MoodEnergetic), 1e-9)
	})

	t.Run("long tracks lean calm", func(t *testing.T) {
		track := &model.Track{Title: "Untitled", Artist: "X", Category: "noise", Duration: 400}
		assert.InDelta(t, 0.1, Confidence(track, model.MoodCalm), 1e-9)
	})

	t.Run("short tracks lean energetic", func(t *testing.T) {
		track := &model.Track{Title: "Untitled", Artist: "X", Category: "noise", Duration: 90}
		assert.InDelta(t, 0.1, Confidence(track, model.MoodEnergetic), 1e-9)
	})

	t.Run("zero duration adds nothing", func(t *testing.T) {
		track := &model.Track{Title: "Chill", Artist: "X", Category: "noise"}
		assert.Zero(t, Confidence(track, model.MoodEnergetic))
	})

	t.Run("confidence clamped to 1", func(t *testing.T) {
		track := &model.Track{
			Title:    "Calm Chill Relax Sleep Peace",
			Artist:   "Soft Slow",
			Category: "ambient",
			Tags:     []string{"ambient"},
			Duration: 400,
		}
		scores := Detect(track)
		assert.Equal(t, model.MoodCalm, scores[0].Mood)
		assert.Equal(t, 1.0, scores[0].Confidence)
	})

	t.Run("ranked descending", func(t *testing.T) {
		track := &model.Track{Title: "Summer Dance", Artist: "X", Category: "electronic", Duration: 150}
		scores := Detect(track)
		require.NotEmpty(t, scores)
		assert.True(t, sort.SliceIsSorted(scores, func(i, j int) bool {
			return scores[i].Confidence > scores[j].Confidence
		}))
		// electronic 0.3 + "dance" 0.2 + short 0.1
		assert.Equal(t, model.MoodEnergetic, scores[0].Mood)
		assert.InDelta(t, 0.6, scores[0].Confidence, 1e-9)
	})
}

func TestTracksByMood(t *testing.T) {
	tracks := []*model.Track{
		{ID: 1, Title: "Workout Energy", Artist: "A", Category: "electronic", Duration: 200},
		{ID: 2, Title: "Quiet Night", Artist: "B", Category: "ambient", Duration: 400},
		{ID: 3, Title: "Dance", Artist: "C", Category: "noise", Duration: 200},
	}

	matched := TracksByMood(tracks, model.MoodEnergetic, DefaultMinConfidence)
	require.Len(t, matched, 1, "0.2 keyword-only score is below the 0.3 threshold")
	assert.Equal(t, int64(1), matched[0].ID)

	// The playlist threshold is looser and picks up the keyword-only match.
	playlist := Playlist(tracks, model.MoodEnergetic, 0, rand.New(rand.NewSource(1)))
	assert.Len(t, playlist, 2)
}

func TestPlaylistTruncates(t *testing.T) {
	tracks := make([]*model.Track, 10)
	for i := range tracks {
		tracks[i] = &model.Track{ID: int64(i + 1), Title: "Chill", Artist: "A", Category: "lofi", Duration: 200}
	}
	playlist := Playlist(tracks, model.MoodCalm, 3, rand.New(rand.NewSource(1)))
	assert.Len(t, playlist, 3)
}

func TestShuffle(t *testing.T) {
	tracks := make([]*model.Track, 20)
	for i := range tracks {
		tracks[i] = &model.Track{ID: int64(i + 1)}
	}

	shuffled := Shuffle(tracks, rand.New(rand.NewSource(42)))

	t.Run("input untouched", func(t *testing.T) {
		for i, tr := range tracks {
			assert.Equal(t, int64(i+1), tr.ID)
		}
	})

	t.Run("same multiset", func(t *testing.T) {
		require.Len(t, shuffled, len(tracks))
		seen := map[int64]bool{}
		for _, tr := range shuffled {
			seen[tr.ID] = true
		}
		assert.Len(t, seen, len(tracks))
	})

	t.Run("deterministic per seed", func(t *testing.T) {
		again := Shuffle(tracks, rand.New(rand.NewSource(42)))
		assert.Equal(t, shuffled, again)
	})
}
