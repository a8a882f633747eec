// Package recommend implements content-based track similarity and the
// history-weighted personalized ranking built on top of it. Scoring
// functions are pure and total; only the personalized path touches I/O (the
// listen-history store), and a failing store degrades to the play-count
// fallback instead of erroring.
package recommend

import (
	"context"
	"math"
	"sort"
	"strings"

	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/storage"
)

// Similarity weights. The total is capped at 1.
const (
	categoryWeight = 0.4
	tagWeight      = 0.1
	durationWeight = 0.2
	artistWeight   = 0.3
	durationWindow = 30.0 // Seconds
)

// Scored pairs a candidate track with its ranking score.
type Scored struct {
	Track *model.Track
	Score float64
}

// Similarity computes the pairwise content similarity of two tracks:
// +0.4 same category, +0.1 per shared tag, +0.2 for durations within 30
// seconds, +0.3 same artist, capped at 1. Tags compare as sets.
func Similarity(a, b *model.Track) float64 {
	score := 0.0
	if a.Category != "" && strings.EqualFold(a.Category, b.Category) {
		score += categoryWeight
	}
	seen := make(map[string]struct{}, len(a.Tags))
	for _, tag := range a.Tags {
		seen[strings.ToLower(tag)] = struct{}{}
	}
	counted := make(map[string]struct{}, len(b.Tags))
	for _, tag := range b.Tags {
		lower := strings.ToLower(tag)
		if _, ok := seen[lower]; !ok {
			continue
		}
		if _, dup := counted[lower]; dup {
			continue
		}
		counted[lower] = struct{}{}
		score += tagWeight
	}
	if math.Abs(a.Duration-b.Duration) < durationWindow {
		score += durationWeight
	}
	if a.Artist != "" && strings.EqualFold(a.Artist, b.Artist) {
		score += artistWeight
	}
	if score > 1 {
		score = 1
	}
	return score
}

// ForTrack scores every other track against seed, drops zero scores, and
// returns the top limit results by score, descending (all of them when
// limit <= 0). Ties keep catalog order.
func ForTrack(seed *model.Track, all []*model.Track, limit int) []Scored {
	scored := make([]Scored, 0, len(all))
	for _, candidate := range all {
		if candidate.ID == seed.ID {
			continue
		}
		if s := Similarity(seed, candidate); s > 0 {
			scored = append(scored, Scored{Track: candidate, Score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// historyDepth bounds how much listen history feeds the personalized
// aggregation.
const historyDepth = 50

// Engine folds the user's listen history into recommendations.
type Engine struct {
	store storage.Store
}

// NewEngine creates a recommendation engine reading history from store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{store: store}
}

// Personalized ranks candidates for the user. With no usable history the
// ranking falls back to play count, descending, ties keeping catalog order.
// Otherwise each unique history track contributes its similarity to every
// candidate, contributions summed per candidate, and anything already in
// history is excluded.
func (e *Engine) Personalized(ctx context.Context, all []*model.Track, limit int) []Scored {
	entries, err := e.store.RecentHistory(ctx, historyDepth)
	if err != nil {
		logger.Warn("failed to read listen history, falling back to popularity",
			logger.ErrorField(err))
		entries = nil
	}

	if len(entries) == 0 {
		return rankByPlayCount(all, limit)
	}

	byID := make(map[int64]*model.Track, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}

	inHistory := make(map[int64]struct{}, len(entries))
	var seeds []*model.Track
	for _, entry := range entries {
		if _, dup := inHistory[entry.TrackID]; dup {
			continue
		}
		inHistory[entry.TrackID] = struct{}{}
		if seed, ok := byID[entry.TrackID]; ok {
			seeds = append(seeds, seed)
		}
	}
	if len(seeds) == 0 {
		return rankByPlayCount(all, limit)
	}

	// Candidates similar to several history tracks accumulate higher
	// aggregate scores.
	aggregate := make(map[int64]float64)
	for _, seed := range seeds {
		for _, rec := range ForTrack(seed, all, 0) {
			aggregate[rec.Track.ID] += rec.Score
		}
	}

	scored := make([]Scored, 0, len(aggregate))
	for _, candidate := range all {
		if _, seen := inHistory[candidate.ID]; seen {
			continue
		}
		if score, ok := aggregate[candidate.ID]; ok && score > 0 {
			scored = append(scored, Scored{Track: candidate, Score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func rankByPlayCount(all []*model.Track, limit int) []Scored {
	scored := make([]Scored, len(all))
	for i, t := range all {
		scored[i] = Scored{Track: t, Score: float64(t.PlayCount)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Track.PlayCount > scored[j].Track.PlayCount
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
