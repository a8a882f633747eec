// Package achieve implements the gamification state machine: action events
// mutate a stats aggregate, every mutation re-evaluates the unlock
// predicates of still-locked achievements, and newly unlocked ones award XP
// into the level curve.
package achieve

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/storage"
)

const (
	stateKey = "state"

	earlyBirdFromHour = 5
	earlyBirdToHour   = 8
	nightOwlToHour    = 4
)

// Stats is the accumulated metric aggregate unlock predicates read from.
type Stats struct {
	Plays          int64           `json:"plays"`
	ListenTime     float64         `json:"listenTime"` // Seconds
	Favorites      int64           `json:"favorites"`
	Shares         int64           `json:"shares"`
	VisualizerUses int64           `json:"visualizerUses"`
	Genres         map[string]bool `json:"genres"`
	Artists        map[string]bool `json:"artists"`
	DayStreak      int64           `json:"dayStreak"`
	LastPlayDay    string          `json:"lastPlayDay"` // YYYY-MM-DD local
	EarlyBird      int64           `json:"earlyBird"`
	NightOwl       int64           `json:"nightOwl"`
}

// Metric returns the aggregate value backing the named metric.
func (s *Stats) Metric(m model.Metric) float64 {
	switch m {
	case model.MetricPlays:
		return float64(s.Plays)
	case model.MetricListenTime:
		return s.ListenTime
	case model.MetricUniqueGenres:
		return float64(len(s.Genres))
	case model.MetricUniqueArtists:
		return float64(len(s.Artists))
	case model.MetricDayStreak:
		return float64(s.DayStreak)
	case model.MetricFavorites:
		return float64(s.Favorites)
	case model.MetricShares:
		return float64(s.Shares)
	case model.MetricVisualizerUses:
		return float64(s.VisualizerUses)
	case model.MetricEarlyBird:
		return float64(s.EarlyBird)
	case model.MetricNightOwl:
		return float64(s.NightOwl)
	default:
		return 0
	}
}

// persistedState is the snapshot written to the gamification store.
type persistedState struct {
	Stats    Stats                `json:"stats"`
	TotalXP  int64                `json:"totalXP"`
	Unlocked map[string]time.Time `json:"unlocked"`
}

// Engine tracks user actions and surfaces newly unlocked achievements.
// Unlocking is monotonic: once an achievement unlocks it is never
// re-evaluated, even if its backing metric later decreases.
type Engine struct {
	mu       sync.Mutex
	store    storage.Store
	stats    Stats
	totalXP  int64
	unlocked map[string]time.Time
	now      func() time.Time
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithNow overrides the engine's time source. Used by tests for streak and
// hour-of-day conditions.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine persisting through store (which may be nil
// for purely in-memory use).
func NewEngine(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		unlocked: make(map[string]time.Time),
		now:      time.Now,
	}
	e.stats.Genres = make(map[string]bool)
	e.stats.Artists = make(map[string]bool)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadState restores the persisted snapshot. A missing or unreadable
// snapshot leaves the engine at zero; that is the graceful-degradation path,
// not an error the caller must handle.
func (e *Engine) LoadState(ctx context.Context) {
	if e.store == nil {
		return
	}
	raw, err := e.store.Get(ctx, storage.StoreGamification, stateKey)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.Warn("failed to load gamification state", logger.ErrorField(err))
		}
		return
	}
	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		logger.Warn("corrupted gamification state, starting fresh", logger.ErrorField(err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats = state.Stats
	if e.stats.Genres == nil {
		e.stats.Genres = make(map[string]bool)
	}
	if e.stats.Artists == nil {
		e.stats.Artists = make(map[string]bool)
	}
	e.totalXP = state.TotalXP
	if state.Unlocked != nil {
		e.unlocked = state.Unlocked
	}
}

// TrackAction feeds one action event into the stats aggregate and returns
// any achievements that unlocked because of it, plus the resulting stats
// block after XP awards.
func (e *Engine) TrackAction(ctx context.Context, action model.ActionType, track *model.Track) ([]model.UserAchievement, model.UserStats) {
	e.mu.Lock()

	switch action {
	case model.ActionTrackPlayed:
		e.stats.Plays++
		if track != nil {
			if track.Category != "" {
				e.stats.Genres[track.Category] = true
			}
			if track.Artist != "" {
				e.stats.Artists[track.Artist] = true
			}
		}
		e.updateStreakLocked()
		e.updateHourFlagsLocked()
	case model.ActionTrackCompleted:
		if track != nil {
			e.stats.ListenTime += track.Duration
		}
	case model.ActionFavoriteAdded:
		e.stats.Favorites++
	case model.ActionFavoriteRemoved:
		if e.stats.Favorites > 0 {
			e.stats.Favorites--
		}
	case model.ActionTrackShared:
		e.stats.Shares++
	case model.ActionVisualizerUsed:
		e.stats.VisualizerUses++
	}

	newly := e.checkAchievementsLocked()
	stats := LevelFromXP(e.totalXP)
	e.mu.Unlock()

	e.persist(ctx)

	return newly, stats
}

// updateStreakLocked maintains the daily listen streak by calendar-day
// comparison with yesterday.
func (e *Engine) updateStreakLocked() {
	const dayFormat = "2006-01-02"
	now := e.now()
	today := now.Format(dayFormat)
	if e.stats.LastPlayDay == today {
		return
	}
	yesterday := now.AddDate(0, 0, -1).Format(dayFormat)
	if e.stats.LastPlayDay == yesterday {
		e.stats.DayStreak++
	} else {
		e.stats.DayStreak = 1
	}
	e.stats.LastPlayDay = today
}

func (e *Engine) updateHourFlagsLocked() {
	hour := e.now().Hour()
	if hour >= earlyBirdFromHour && hour < earlyBirdToHour {
		e.stats.EarlyBird++
	}
	if hour < nightOwlToHour {
		e.stats.NightOwl++
	}
}

// checkAchievementsLocked evaluates every still-locked catalog entry and
// unlocks those whose metric reached the target.
func (e *Engine) checkAchievementsLocked() []model.UserAchievement {
	var newly []model.UserAchievement
	for _, a := range catalog {
		if _, done := e.unlocked[a.ID]; done {
			continue
		}
		progress := e.stats.Metric(a.Requirement.Metric)
		if progress < a.Requirement.Target {
			continue
		}
		at := e.now()
		e.unlocked[a.ID] = at
		e.totalXP = AwardXP(e.totalXP, a.Reward.XP).TotalXP
		unlockedAt := at
		newly = append(newly, model.UserAchievement{
			Achievement: a,
			Unlocked:    true,
			Progress:    progress,
			UnlockedAt:  &unlockedAt,
		})
		logger.Info("achievement unlocked",
			logger.String("id", a.ID),
			logger.Int64("xp", a.Reward.XP))
	}
	return newly
}

func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	e.mu.Lock()
	state := persistedState{
		Stats:    e.stats,
		TotalXP:  e.totalXP,
		Unlocked: e.unlocked,
	}
	payload, err := json.Marshal(state)
	e.mu.Unlock()
	if err != nil {
		logger.Warn("failed to marshal gamification state", logger.ErrorField(err))
		return
	}
	if err := e.store.Set(ctx, storage.StoreGamification, stateKey, payload); err != nil {
		logger.Warn("failed to persist gamification state", logger.ErrorField(err))
	}
}

// Stats returns a copy of the current aggregate.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := e.stats
	stats.Genres = make(map[string]bool, len(e.stats.Genres))
	for k, v := range e.stats.Genres {
		stats.Genres[k] = v
	}
	stats.Artists = make(map[string]bool, len(e.stats.Artists))
	for k, v := range e.stats.Artists {
		stats.Artists[k] = v
	}
	return stats
}

// UserStats returns the level block derived from lifetime XP.
func (e *Engine) UserStats() model.UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return LevelFromXP(e.totalXP)
}

// Achievements returns the full derived per-user view of the catalog.
func (e *Engine) Achievements() []model.UserAchievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.UserAchievement, 0, len(catalog))
	for _, a := range catalog {
		ua := model.UserAchievement{
			Achievement: a,
			Progress:    e.stats.Metric(a.Requirement.Metric),
		}
		if at, ok := e.unlocked[a.ID]; ok {
			ua.Unlocked = true
			unlockedAt := at
			ua.UnlockedAt = &unlockedAt
		}
		out = append(out, ua)
	}
	return out
}
