package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryType represents the type of balance change
type EntryType string

const (
	EntryTypeDeposit          EntryType = "deposit"
	EntryTypeDepositBonus     EntryType = "deposit_bonus"
	EntryTypeWithdrawal       EntryType = "withdrawal"
	EntryTypeWithdrawalRefund EntryType = "withdrawal_refund"
	EntryTypeReferralBonus    EntryType = "referral_bonus"
	EntryTypeGameWin          EntryType = "game_win"
	EntryTypeGameLoss         EntryType = "game_loss"
	EntryTypeWelcomeBonus     EntryType = "welcome_bonus"
	EntryTypeAdminAdjustment  EntryType = "admin_adjustment"
)

// LedgerEntry is one immutable row in the append-only balance-change log.
// ChangeAmount is signed; BalanceAfter - BalanceBefore always equals ChangeAmount.
type LedgerEntry struct {
	ID            uuid.UUID      `db:"id"`
	AccountID     string         `db:"account_id"`
	EntryType     EntryType      `db:"entry_type"`
	ChangeAmount  int64          `db:"change_amount"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ReferenceID   *uuid.UUID     `db:"reference_id"` // the request or round that caused this entry
	Description   string         `db:"description"`
	Metadata      map[string]any `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
}
