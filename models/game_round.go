package models

import (
	"time"

	"github.com/google/uuid"
)

// GameRound records one completed bet. Written in the same transaction as
// its ledger entry; both exist or neither does.
type GameRound struct {
	ID            uuid.UUID `db:"id"`
	AccountID     string    `db:"account_id"`
	GameID        string    `db:"game_id"`
	BetAmount     int64     `db:"bet_amount"`
	WinAmount     int64     `db:"win_amount"` // 0 on loss
	Won           bool      `db:"won"`
	LedgerEntryID uuid.UUID `db:"ledger_entry_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// RoundResult represents the outcome of a played round (returned to the user)
type RoundResult struct {
	Won        bool
	BetAmount  int64
	WinAmount  int64
	NewBalance int64
	Round      *GameRound
}
