package models

import "time"

// RequestAggregate summarizes transfer requests of one kind and status
type RequestAggregate struct {
	Count int64 `json:"count"`
	Sum   int64 `json:"sum"`
}

// DashboardReport is the read-only aggregate view the admin dashboard
// renders. Every field degrades to its zero value when the underlying
// fetch fails; a partial report is always returned.
type DashboardReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalAccounts  int64 `json:"total_accounts"`
	TotalBalance   int64 `json:"total_balance"`
	TotalDeposited int64 `json:"total_deposited"`
	TotalWithdrawn int64 `json:"total_withdrawn"`

	PendingDeposits    RequestAggregate `json:"pending_deposits"`
	PendingWithdrawals RequestAggregate `json:"pending_withdrawals"`

	DepositsToday    RequestAggregate `json:"deposits_today"`    // approved today
	WithdrawalsToday RequestAggregate `json:"withdrawals_today"` // approved today

	GameRoundsToday int64 `json:"game_rounds_today"`
	WageredToday    int64 `json:"wagered_today"`
	PaidOutToday    int64 `json:"paid_out_today"`

	// ApprovalRate is decided-approved / decided-total over all time,
	// in [0, 1]. Zero when nothing has been decided.
	ApprovalRate float64 `json:"approval_rate"`
}
