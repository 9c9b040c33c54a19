package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestKind discriminates deposits from withdrawals
type RequestKind string

const (
	RequestKindDeposit    RequestKind = "deposit"
	RequestKindWithdrawal RequestKind = "withdrawal"
)

// RequestStatus represents the lifecycle state of a transfer request.
// Approved and Rejected are terminal; there are no other transitions.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// WithdrawalMethodKind tags the payout channel chosen at request creation
type WithdrawalMethodKind string

const (
	WithdrawalMethodBank WithdrawalMethodKind = "bank_transfer"
	WithdrawalMethodUSDT WithdrawalMethodKind = "usdt"
)

// BankTransferDetails carries the payout target for a bank withdrawal
type BankTransferDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

// USDTDetails carries the payout target for a USDT withdrawal
type USDTDetails struct {
	Network       string `json:"network"`
	WalletAddress string `json:"wallet_address"`
}

// WithdrawalMethod is a tagged union: exactly one of Bank or USDT is set,
// matching Kind. Chosen at request creation and immutable afterwards.
type WithdrawalMethod struct {
	Kind WithdrawalMethodKind `json:"kind"`
	Bank *BankTransferDetails `json:"bank,omitempty"`
	USDT *USDTDetails         `json:"usdt,omitempty"`
}

// TransferRequest is a user-submitted deposit or withdrawal awaiting an
// admin decision. Amount is immutable after creation; exactly one terminal
// transition is permitted per request.
type TransferRequest struct {
	ID        uuid.UUID     `db:"id"`
	AccountID string        `db:"account_id"`
	Kind      RequestKind   `db:"kind"`
	Amount    int64         `db:"amount"`
	Status    RequestStatus `db:"status"`

	// Deposit only: computed at approval time, not at creation.
	BonusAmount int64 `db:"bonus_amount"`

	// Withdrawal only: fee split computed at creation for display. The
	// ledger debit at creation is the full Amount; the fee is realized
	// only conceptually until approval finalizes it.
	DeductionAmount int64 `db:"deduction_amount"`
	FinalAmount     int64 `db:"final_amount"`

	Method          *WithdrawalMethod `db:"method"`
	PaymentMetadata map[string]any    `db:"payment_metadata"`

	Reason    string     `db:"reason"` // rejection reason, empty while pending/approved
	DecidedBy *string    `db:"decided_by"`
	DecidedAt *time.Time `db:"decided_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// DecisionResult is the outcome of an approve/reject returned to the admin
// surface. SecondaryFailure is set when a non-primary step (the referral
// bonus credit) failed after the primary effect committed; the decision
// itself still succeeded.
type DecisionResult struct {
	Request          *TransferRequest
	CreditedAmount   int64 // total credited to the account (deposit approvals)
	RefundedAmount   int64 // escrow returned (withdrawal rejections)
	ReferralCredited int64 // bonus paid to the referrer, 0 if none
	SecondaryFailure error
}
