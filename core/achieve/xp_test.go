package achieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, int64(100), XPForLevel(1))
	assert.Equal(t, int64(150), XPForLevel(2))
	assert.Equal(t, int64(225), XPForLevel(3))
	assert.Equal(t, int64(337), XPForLevel(4)) // floor(337.5)
	assert.Zero(t, XPForLevel(0))
	assert.Zero(t, XPForLevel(-3))
}

func TestLevelFromXP(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		stats := LevelFromXP(0)
		assert.Equal(t, 1, stats.Level)
		assert.Zero(t, stats.XP)
		assert.Equal(t, int64(100), stats.XPToNextLevel)
	})

	t.Run("mid level", func(t *testing.T) {
		stats := LevelFromXP(120)
		assert.Equal(t, 2, stats.Level)
		assert.Equal(t, int64(20), stats.XP)
		assert.Equal(t, int64(150), stats.XPToNextLevel)
	})

	t.Run("exact boundary rolls over", func(t *testing.T) {
		stats := LevelFromXP(250)
		assert.Equal(t, 3, stats.Level)
		assert.Zero(t, stats.XP)
		assert.Equal(t, int64(225), stats.XPToNextLevel)
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		stats := LevelFromXP(-50)
		assert.Equal(t, 1, stats.Level)
		assert.Zero(t, stats.TotalXP)
	})

	t.Run("level is monotone in total", func(t *testing.T) {
		prev := 0
		for total := int64(0); total <= 5000; total += 37 {
			level := LevelFromXP(total).Level
			assert.GreaterOrEqual(t, level, prev)
			prev = level
		}
	})

	t.Run("in-level XP below next cost", func(t *testing.T) {
		for total := int64(0); total <= 5000; total += 41 {
			stats := LevelFromXP(total)
			assert.Less(t, stats.XP, stats.XPToNextLevel, "total %d", total)
		}
	})
}

func TestAwardXP(t *testing.T) {
	stats := AwardXP(90, 20)
	assert.Equal(t, int64(110), stats.TotalXP)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, int64(10), stats.XP)

	// Zero award round-trips.
	again := AwardXP(stats.TotalXP, 0)
	assert.Equal(t, stats, again)
}
