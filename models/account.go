package models

import (
	"time"
)

// Account represents a user's wallet: current balance plus lifetime accumulators.
// The accumulators are monotonically non-decreasing; only the ledger mutates Balance.
type Account struct {
	ID               string     `db:"id"`
	Balance          int64      `db:"balance"`
	TotalDeposited   int64      `db:"total_deposited"`
	TotalWithdrawn   int64      `db:"total_withdrawn"`
	TotalWon         int64      `db:"total_won"`
	TotalLost        int64      `db:"total_lost"`
	ReferralEarnings int64      `db:"referral_earnings"`
	ReferralCount    int        `db:"referral_count"`
	GamesPlayed      int        `db:"games_played"`
	CurrentStreak    int        `db:"current_streak"` // positive = consecutive wins, negative = consecutive losses
	ReferredBy       *string    `db:"referred_by"`    // set once at creation, never changed
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// GameStats is the slice of account state a win-probability policy may look at.
type GameStats struct {
	GamesPlayed   int
	CurrentStreak int
	TotalWon      int64
	TotalLost     int64
}

// Stats extracts the game statistics for this account.
func (a *Account) Stats() GameStats {
	return GameStats{
		GamesPlayed:   a.GamesPlayed,
		CurrentStreak: a.CurrentStreak,
		TotalWon:      a.TotalWon,
		TotalLost:     a.TotalLost,
	}
}
