package achieve

import "EchoFM/model"

// catalog is the static achievement table. Entries are immutable; the
// engine only ever derives per-user state from them.
var catalog = []model.Achievement{
	{
		ID: "first_listen", Name: "First Listen", Tier: model.TierBronze, Category: "listening",
		Description: "Play your first track.",
		Requirement: model.Requirement{Metric: model.MetricPlays, Target: 1},
		Reward:      model.Reward{XP: 10},
	},
	{
		ID: "listener_10", Name: "Getting Into It", Tier: model.TierBronze, Category: "listening",
		Description: "Play 10 tracks.",
		Requirement: model.Requirement{Metric: model.MetricPlays, Target: 10},
		Reward:      model.Reward{XP: 25},
	},
	{
		ID: "listener_100", Name: "Regular", Tier: model.TierSilver, Category: "listening",
		Description: "Play 100 tracks.",
		Requirement: model.Requirement{Metric: model.MetricPlays, Target: 100},
		Reward:      model.Reward{XP: 100},
	},
	{
		ID: "listener_500", Name: "Devoted", Tier: model.TierGold, Category: "listening",
		Description: "Play 500 tracks.",
		Requirement: model.Requirement{Metric: model.MetricPlays, Target: 500},
		Reward:      model.Reward{XP: 300},
	},
	{
		ID: "marathon", Name: "Marathon", Tier: model.TierSilver, Category: "listening",
		Description: "Listen for a full hour in total.",
		Requirement: model.Requirement{Metric: model.MetricListenTime, Target: 3600},
		Reward:      model.Reward{XP: 50},
	},
	{
		ID: "explorer_5", Name: "Explorer", Tier: model.TierSilver, Category: "exploration",
		Description: "Listen to 5 different genres.",
		Requirement: model.Requirement{Metric: model.MetricUniqueGenres, Target: 5},
		Reward:      model.Reward{XP: 50},
	},
	{
		ID: "collector_10", Name: "Collector", Tier: model.TierSilver, Category: "exploration",
		Description: "Listen to 10 different artists.",
		Requirement: model.Requirement{Metric: model.MetricUniqueArtists, Target: 10},
		Reward:      model.Reward{XP: 50},
	},
	{
		ID: "streak_3", Name: "Warming Up", Tier: model.TierBronze, Category: "streak",
		Description: "Listen 3 days in a row.",
		Requirement: model.Requirement{Metric: model.MetricDayStreak, Target: 3},
		Reward:      model.Reward{XP: 30},
	},
	{
		ID: "streak_7", Name: "One Week Strong", Tier: model.TierSilver, Category: "streak",
		Description: "Listen 7 days in a row.",
		Requirement: model.Requirement{Metric: model.MetricDayStreak, Target: 7},
		Reward:      model.Reward{XP: 75},
	},
	{
		ID: "streak_30", Name: "Habitual", Tier: model.TierGold, Category: "streak",
		Description: "Listen 30 days in a row.",
		Requirement: model.Requirement{Metric: model.MetricDayStreak, Target: 30},
		Reward:      model.Reward{XP: 200},
	},
	{
		ID: "curator_10", Name: "Curator", Tier: model.TierSilver, Category: "social",
		Description: "Keep 10 favorites at once.",
		Requirement: model.Requirement{Metric: model.MetricFavorites, Target: 10},
		Reward:      model.Reward{XP: 40},
	},
	{
		ID: "first_share", Name: "Spread the Word", Tier: model.TierBronze, Category: "social",
		Description: "Share a track.",
		Requirement: model.Requirement{Metric: model.MetricShares, Target: 1},
		Reward:      model.Reward{XP: 15},
	},
	{
		ID: "sharer_10", Name: "Evangelist", Tier: model.TierSilver, Category: "social",
		Description: "Share 10 tracks.",
		Requirement: model.Requirement{Metric: model.MetricShares, Target: 10},
		Reward:      model.Reward{XP: 50},
	},
	{
		ID: "visualizer_fan", Name: "Light Show", Tier: model.TierBronze, Category: "special",
		Description: "Open the visualizer 10 times.",
		Requirement: model.Requirement{Metric: model.MetricVisualizerUses, Target: 10},
		Reward:      model.Reward{XP: 25},
	},
	{
		ID: "early_bird", Name: "Early Bird", Tier: model.TierBronze, Category: "special",
		Description: "Listen before 8 in the morning.",
		Requirement: model.Requirement{Metric: model.MetricEarlyBird, Target: 1},
		Reward:      model.Reward{XP: 20},
	},
	{
		ID: "night_owl", Name: "Night Owl", Tier: model.TierBronze, Category: "special",
		Description: "Listen after midnight.",
		Requirement: model.Requirement{Metric: model.MetricNightOwl, Target: 1},
		Reward:      model.Reward{XP: 20},
	},
}

// Catalog returns a copy of the static achievement table.
func Catalog() []model.Achievement {
	out := make([]model.Achievement, len(catalog))
	copy(out, catalog)
	return out
}
