package api

import (
	"time"

	"cashier/models"
)

type createDepositRequest struct {
	Amount          int64          `json:"amount" validate:"required,gt=0"`
	PaymentMetadata map[string]any `json:"payment_metadata"`
}

type createWithdrawalRequest struct {
	Amount int64                    `json:"amount" validate:"required,gt=0"`
	Method *models.WithdrawalMethod `json:"method" validate:"required"`
}

type playRoundRequest struct {
	GameID    string `json:"game_id" validate:"required"`
	BetAmount int64  `json:"bet_amount" validate:"required,gt=0"`
}

type decisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type adjustRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type transferRequestResponse struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"account_id"`
	Kind            string     `json:"kind"`
	Amount          int64      `json:"amount"`
	Status          string     `json:"status"`
	BonusAmount     int64      `json:"bonus_amount,omitempty"`
	DeductionAmount int64      `json:"deduction_amount,omitempty"`
	FinalAmount     int64      `json:"final_amount,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	DecidedBy       *string    `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toRequestResponse(req *models.TransferRequest) transferRequestResponse {
	return transferRequestResponse{
		ID:              req.ID.String(),
		AccountID:       req.AccountID,
		Kind:            string(req.Kind),
		Amount:          req.Amount,
		Status:          string(req.Status),
		BonusAmount:     req.BonusAmount,
		DeductionAmount: req.DeductionAmount,
		FinalAmount:     req.FinalAmount,
		Reason:          req.Reason,
		DecidedBy:       req.DecidedBy,
		DecidedAt:       req.DecidedAt,
		CreatedAt:       req.CreatedAt,
	}
}

type decisionResponse struct {
	Request          transferRequestResponse `json:"request"`
	CreditedAmount   int64                   `json:"credited_amount,omitempty"`
	RefundedAmount   int64                   `json:"refunded_amount,omitempty"`
	ReferralCredited int64                   `json:"referral_credited,omitempty"`
	Warning          string                  `json:"warning,omitempty"`
}

func toDecisionResponse(result *models.DecisionResult) decisionResponse {
	resp := decisionResponse{
		Request:          toRequestResponse(result.Request),
		CreditedAmount:   result.CreditedAmount,
		RefundedAmount:   result.RefundedAmount,
		ReferralCredited: result.ReferralCredited,
	}
	if result.SecondaryFailure != nil {
		resp.Warning = result.SecondaryFailure.Error()
	}
	return resp
}

type registerRequest struct {
	ReferredBy *string `json:"referred_by"`
}

type accountResponse struct {
	ID               string    `json:"id"`
	Balance          int64     `json:"balance"`
	TotalDeposited   int64     `json:"total_deposited"`
	TotalWithdrawn   int64     `json:"total_withdrawn"`
	TotalWon         int64     `json:"total_won"`
	TotalLost        int64     `json:"total_lost"`
	ReferralEarnings int64     `json:"referral_earnings"`
	ReferralCount    int       `json:"referral_count"`
	GamesPlayed      int       `json:"games_played"`
	ReferredBy       *string   `json:"referred_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:               account.ID,
		Balance:          account.Balance,
		TotalDeposited:   account.TotalDeposited,
		TotalWithdrawn:   account.TotalWithdrawn,
		TotalWon:         account.TotalWon,
		TotalLost:        account.TotalLost,
		ReferralEarnings: account.ReferralEarnings,
		ReferralCount:    account.ReferralCount,
		GamesPlayed:      account.GamesPlayed,
		ReferredBy:       account.ReferredBy,
		CreatedAt:        account.CreatedAt,
	}
}

type ledgerEntryResponse struct {
	ID            string    `json:"id"`
	EntryType     string    `json:"entry_type"`
	ChangeAmount  int64     `json:"change_amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	ReferenceID   *string   `json:"reference_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toLedgerEntryResponse(entry *models.LedgerEntry) ledgerEntryResponse {
	resp := ledgerEntryResponse{
		ID:            entry.ID.String(),
		EntryType:     string(entry.EntryType),
		ChangeAmount:  entry.ChangeAmount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.ReferenceID != nil {
		ref := entry.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type roundResponse struct {
	Won        bool  `json:"won"`
	BetAmount  int64 `json:"bet_amount"`
	WinAmount  int64 `json:"win_amount"`
	NewBalance int64 `json:"new_balance"`
}

type auditResponse struct {
	AccountID       string `json:"account_id"`
	StoredBalance   int64  `json:"stored_balance"`
	ReplayedBalance int64  `json:"replayed_balance"`
	Consistent      bool   `json:"consistent"`
}
