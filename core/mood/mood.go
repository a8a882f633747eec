// Package mood classifies tracks into coarse emotional labels from their
// metadata alone. Every function here is total: any track yields a ranked,
// non-empty result, and no input errors.
package mood

import (
	"math/rand"
	"sort"
	"strings"

	"EchoFM/model"
)

// Scoring weights. A track accumulates credit toward several moods at once;
// each mood's score is clamped to 1.
const (
	categoryWeight = 0.3
	keywordWeight  = 0.2
	durationWeight = 0.1

	longTrackSeconds  = 300.0
	shortTrackSeconds = 180.0

	fallbackConfidence = 0.5

	// DefaultMinConfidence is the filter threshold for TracksByMood.
	DefaultMinConfidence = 0.3
	// playlistMinConfidence is the looser threshold playlist generation uses.
	playlistMinConfidence = 0.2
)

// categoryMoods maps catalog categories to the moods they suggest.
var categoryMoods = map[string][]model.Mood{
	"ambient":    {model.MoodCalm, model.MoodFocused},
	"classical":  {model.MoodCalm, model.MoodFocused, model.MoodRomantic},
	"lofi":       {model.MoodCalm, model.MoodFocused},
	"jazz":       {model.MoodRomantic, model.MoodCalm},
	"blues":      {model.MoodMelancholic, model.MoodRomantic},
	"folk":       {model.MoodMelancholic, model.MoodCalm},
	"pop":        {model.MoodHappy, model.MoodEnergetic},
	"electronic": {model.MoodEnergetic, model.MoodHappy},
	"rock":       {model.MoodEnergetic},
	"metal":      {model.MoodEnergetic},
}

// moodKeywords holds per-mood keyword lists matched as substrings of the
// lowercased title+artist+tags text. Lists are checked independently.
var moodKeywords = map[model.Mood][]string{
	model.MoodCalm:        {"calm", "chill", "relax", "sleep", "ambient", "peace", "soft", "slow"},
	model.MoodEnergetic:   {"energy", "power", "pump", "workout", "dance", "fast", "drive", "run"},
	model.MoodHappy:       {"happy", "joy", "sun", "smile", "summer", "fun", "party"},
	model.MoodMelancholic: {"sad", "rain", "blue", "lonely", "tears", "goodbye", "winter"},
	model.MoodFocused:     {"study", "focus", "work", "deep", "minimal", "concentration"},
	model.MoodRomantic:    {"love", "heart", "kiss", "romance", "tender"},
}

// Detect scores every mood for the track and returns the non-zero scores
// ranked by confidence, descending. Deterministic given the same track
// snapshot. A track matching nothing yields the single calm fallback.
func Detect(track *model.Track) []model.MoodScore {
	scores := make(map[model.Mood]float64, len(model.Moods))

	for _, m := range categoryMoods[strings.ToLower(track.Category)] {
		scores[m] += categoryWeight
	}

	text := searchText(track)
	for _, m := range model.Moods {
		for _, kw := range moodKeywords[m] {
			if strings.Contains(text, kw) {
				scores[m] += keywordWeight
			}
		}
	}

	if track.Duration > longTrackSeconds {
		scores[model.MoodCalm] += durationWeight
	} else if track.Duration < shortTrackSeconds && track.Duration > 0 {
		scores[model.MoodEnergetic] += durationWeight
	}

	ranked := make([]model.MoodScore, 0, len(scores))
	for _, m := range model.Moods {
		s := scores[m]
		if s <= 0 {
			continue
		}
		if s > 1 {
			s = 1
		}
		ranked = append(ranked, model.MoodScore{Mood: m, Confidence: s})
	}
	if len(ranked) == 0 {
		return []model.MoodScore{{Mood: model.MoodCalm, Confidence: fallbackConfidence}}
	}
	// Iteration over model.Moods is already a stable order; sorting by
	// confidence keeps ties in that order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// Confidence returns the track's confidence for a single mood, 0 when the
// mood is not among the detected ones.
func Confidence(track *model.Track, m model.Mood) float64 {
	for _, score := range Detect(track) {
		if score.Mood == m {
			return score.Confidence
		}
	}
	return 0
}

// TracksByMood filters tracks whose confidence for the mood reaches
// minConfidence and sorts them by that confidence, descending.
func TracksByMood(tracks []*model.Track, m model.Mood, minConfidence float64) []*model.Track {
	type scored struct {
		track      *model.Track
		confidence float64
	}
	matching := make([]scored, 0, len(tracks))
	for _, t := range tracks {
		if c := Confidence(t, m); c >= minConfidence {
			matching = append(matching, scored{t, c})
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].confidence > matching[j].confidence
	})
	out := make([]*model.Track, len(matching))
	for i, s := range matching {
		out[i] = s.track
	}
	return out
}

// Playlist picks up to length tracks matching the mood at a looser threshold
// than TracksByMood, shuffled so repeated playlists differ.
func Playlist(tracks []*model.Track, m model.Mood, length int, rng *rand.Rand) []*model.Track {
	matching := TracksByMood(tracks, m, playlistMinConfidence)
	shuffled := Shuffle(matching, rng)
	if length > 0 && len(shuffled) > length {
		shuffled = shuffled[:length]
	}
	return shuffled
}

// Shuffle returns a uniformly shuffled copy of tracks (Fisher-Yates). The
// input slice is not modified.
func Shuffle(tracks []*model.Track, rng *rand.Rand) []*model.Track {
	out := make([]*model.Track, len(tracks))
	copy(out, tracks)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func searchText(track *model.Track) string {
	parts := make([]string, 0, len(track.Tags)+2)
	parts = append(parts, track.Title, track.Artist)
	parts = append(parts, track.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
