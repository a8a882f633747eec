package model

import "time"

// ActionType identifies a user action fed into the achievement engine.
type ActionType string

const (
	ActionTrackPlayed     ActionType = "track_played"
	ActionTrackCompleted  ActionType = "track_completed"
	ActionFavoriteAdded   ActionType = "favorite_added"
	ActionFavoriteRemoved ActionType = "favorite_removed"
	ActionTrackShared     ActionType = "track_shared"
	ActionVisualizerUsed  ActionType = "visualizer_used"
)

// Metric names an accumulated stat an achievement predicate can target.
type Metric string

const (
	MetricPlays          Metric = "plays"
	MetricListenTime     Metric = "listen_time"
	MetricUniqueGenres   Metric = "unique_genres"
	MetricUniqueArtists  Metric = "unique_artists"
	MetricDayStreak      Metric = "day_streak"
	MetricFavorites      Metric = "favorites"
	MetricShares         Metric = "shares"
	MetricVisualizerUses Metric = "visualizer_uses"
	MetricEarlyBird      Metric = "early_bird"
	MetricNightOwl       Metric = "night_owl"
)

// AchievementTier is the display tier of a catalog entry.
type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

// Requirement is the unlock predicate: metric value must reach Target.
type Requirement struct {
	Metric Metric  `json:"metric"`
	Target float64 `json:"target"`
}

// Reward is granted once when an achievement unlocks.
type Reward struct {
	XP     int64  `json:"xp"`
	Unlock string `json:"unlock,omitempty"`
}

// Achievement is an immutable catalog entry.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tier        AchievementTier `json:"tier"`
	Category    string          `json:"category"`
	Requirement Requirement     `json:"requirement"`
	Reward      Reward          `json:"reward"`
}

// UserAchievement is the runtime view of a catalog entry for one user.
// Once Unlocked flips to true it never reverts.
type UserAchievement struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	Progress   float64    `json:"progress"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// UserStats is derived deterministically from lifetime total XP; it is never
// stored independently of TotalXP.
type UserStats struct {
	Level         int   `json:"level"`
	XP            int64 `json:"xp"`
	XPToNextLevel int64 `json:"xpToNextLevel"`
	TotalXP       int64 `json:"totalXP"`
}
