package achieve

import (
	"math"

	"EchoFM/model"
)

// xpBase and xpGrowth define the geometric level-cost curve:
// XPForLevel(n) = floor(100 * 1.5^(n-1)).
const (
	xpBase   = 100.0
	xpGrowth = 1.5
)

// XPForLevel returns the XP cost of finishing the given level.
func XPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	return int64(math.Floor(xpBase * math.Pow(xpGrowth, float64(level-1))))
}

// LevelFromXP derives the full stats block from lifetime total XP by
// greedily consuming level-cost buckets from level 1 upward. Level and
// in-level XP are always a pure function of the total, so they can never
// drift from it.
func LevelFromXP(totalXP int64) model.UserStats {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	remaining := totalXP
	for remaining >= XPForLevel(level) {
		remaining -= XPForLevel(level)
		level++
	}
	return model.UserStats{
		Level:         level,
		XP:            remaining,
		XPToNextLevel: XPForLevel(level),
		TotalXP:       totalXP,
	}
}

// AwardXP adds delta to the lifetime total and rederives the stats block.
func AwardXP(currentTotalXP, delta int64) model.UserStats {
	return LevelFromXP(currentTotalXP + delta)
}
