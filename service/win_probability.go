package service

import (
	"cashier/models"
)

// WinProbabilityPolicy maps an account's game statistics to the win
// probability for its next round. Pure function; it is not load-bearing
// for ledger correctness and can be swapped per game.
type WinProbabilityPolicy func(stats models.GameStats) float64

const (
	minWinProbability = 0.05
	maxWinProbability = 0.95
)

// FixedWinProbability returns a policy that ignores statistics
func FixedWinProbability(p float64) WinProbabilityPolicy {
	p = clampProbability(p)
	return func(models.GameStats) float64 {
		return p
	}
}

// StreakDampenedProbability returns a policy that nudges the base
// probability against long streaks: each loss beyond the threshold raises
// the next round's win chance by step, each win beyond it lowers it.
func StreakDampenedProbability(base float64, streakThreshold int, step float64) WinProbabilityPolicy {
	base = clampProbability(base)
	return func(stats models.GameStats) float64 {
		p := base
		switch {
		case stats.CurrentStreak <= -streakThreshold:
			losses := -stats.CurrentStreak - streakThreshold + 1
			p += float64(losses) * step
		case stats.CurrentStreak >= streakThreshold:
			wins := stats.CurrentStreak - streakThreshold + 1
			p -= float64(wins) * step
		}
		return clampProbability(p)
	}
}

func clampProbability(p float64) float64 {
	if p < minWinProbability {
		return minWinProbability
	}
	if p > maxWinProbability {
		return maxWinProbability
	}
	return p
}
