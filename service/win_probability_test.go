package service

import (
	"testing"

	"cashier/models"

	"github.com/stretchr/testify/assert"
)

func TestFixedWinProbability(t *testing.T) {
	policy := FixedWinProbability(0.4)

	assert.Equal(t, 0.4, policy(models.GameStats{}))
	assert.Equal(t, 0.4, policy(models.GameStats{CurrentStreak: 10}))
	assert.Equal(t, 0.4, policy(models.GameStats{CurrentStreak: -10}))
}

func TestFixedWinProbability_Clamped(t *testing.T) {
	assert.Equal(t, 0.05, FixedWinProbability(0.0)(models.GameStats{}))
	assert.Equal(t, 0.95, FixedWinProbability(1.0)(models.GameStats{}))
}

func TestStreakDampenedProbability(t *testing.T) {
	policy := StreakDampenedProbability(0.5, 3, 0.05)

	t.Run("no streak keeps base", func(t *testing.T) {
		assert.InDelta(t, 0.5, policy(models.GameStats{CurrentStreak: 0}), 1e-9)
		assert.InDelta(t, 0.5, policy(models.GameStats{CurrentStreak: 2}), 1e-9)
		assert.InDelta(t, 0.5, policy(models.GameStats{CurrentStreak: -2}), 1e-9)
	})

	t.Run("loss streak raises probability", func(t *testing.T) {
		assert.InDelta(t, 0.55, policy(models.GameStats{CurrentStreak: -3}), 1e-9)
		assert.InDelta(t, 0.65, policy(models.GameStats{CurrentStreak: -5}), 1e-9)
	})

	t.Run("win streak lowers probability", func(t *testing.T) {
		assert.InDelta(t, 0.45, policy(models.GameStats{CurrentStreak: 3}), 1e-9)
		assert.InDelta(t, 0.35, policy(models.GameStats{CurrentStreak: 5}), 1e-9)
	})

	t.Run("long streaks stay within clamp bounds", func(t *testing.T) {
		assert.Equal(t, 0.95, policy(models.GameStats{CurrentStreak: -100}))
		assert.Equal(t, 0.05, policy(models.GameStats{CurrentStreak: 100}))
	})
}
