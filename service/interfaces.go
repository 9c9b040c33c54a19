package service

import (
	"context"
	"time"

	"cashier/events"
	"cashier/models"
	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by its ID, nil when not found
	GetByID(ctx context.Context, accountID string) (*models.Account, error)

	// GetByIDForUpdate retrieves an account holding a row lock; only valid
	// inside a transaction
	GetByIDForUpdate(ctx context.Context, accountID string) (*models.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, accountID string, referredBy *string, initialBalance int64) (*models.Account, error)

	// UpdateBalance sets an account's balance
	UpdateBalance(ctx context.Context, accountID string, newBalance int64) error

	// AddDeposited increments the lifetime deposit accumulator
	AddDeposited(ctx context.Context, accountID string, amount int64) error

	// AddWithdrawn increments the lifetime withdrawal accumulator
	AddWithdrawn(ctx context.Context, accountID string, amount int64) error

	// AddReferralEarnings increments the referral accumulators on the referrer
	AddReferralEarnings(ctx context.Context, accountID string, amount int64) error

	// RecordGameOutcome updates win/loss accumulators and the streak counter
	RecordGameOutcome(ctx context.Context, accountID string, won bool, betAmount, winAmount int64) error

	// Aggregate returns platform-wide account totals
	Aggregate(ctx context.Context) (accounts int64, balance int64, deposited int64, withdrawn int64, err error)
}

// RequestRepository defines the interface for transfer request data access
type RequestRepository interface {
	// Create persists a new pending transfer request
	Create(ctx context.Context, req *models.TransferRequest) error

	// GetByID retrieves a transfer request, nil when not found
	GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)

	// GetByIDForUpdate retrieves a transfer request holding a row lock
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)

	// MarkDecided transitions a request out of pending, guarded by
	// status = 'pending'; false when the request was already decided
	MarkDecided(ctx context.Context, id uuid.UUID, status models.RequestStatus, decidedBy string, reason string, bonusAmount int64) (bool, error)

	// ListByStatus returns requests in a given status, oldest first
	ListByStatus(ctx context.Context, status models.RequestStatus, limit int) ([]*models.TransferRequest, error)

	// ListByAccount returns the most recent requests for one account
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransferRequest, error)

	// AggregatePending returns count and sum of pending requests of one kind
	AggregatePending(ctx context.Context, kind models.RequestKind) (models.RequestAggregate, error)

	// AggregateDecidedBetween returns count and sum of approved requests of
	// one kind decided within [from, to)
	AggregateDecidedBetween(ctx context.Context, kind models.RequestKind, from, to time.Time) (models.RequestAggregate, error)

	// DecisionCounts returns lifetime approved and rejected counts
	DecisionCounts(ctx context.Context) (approved int64, rejected int64, err error)
}

// LedgerRepository defines the interface for the append-only transaction log
type LedgerRepository interface {
	// Append writes one ledger entry
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// GetByAccount returns the most recent entries for an account
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)

	// GetByAccountAsc returns all entries for an account in creation order
	GetByAccountAsc(ctx context.Context, accountID string) ([]*models.LedgerEntry, error)
}

// GameRoundRepository defines the interface for game round data access
type GameRoundRepository interface {
	// Create persists a completed game round
	Create(ctx context.Context, round *models.GameRound) error

	// GetByAccount returns the most recent rounds for an account
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.GameRound, error)

	// AggregateBetween returns round count, total wagered and total paid out
	// within [from, to)
	AggregateBetween(ctx context.Context, from, to time.Time) (rounds int64, wagered int64, paidOut int64, err error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	RequestRepository() RequestRepository
	LedgerRepository() LedgerRepository
	GameRoundRepository() GameRoundRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// LedgerService is the single mutation path for account balances. Every
// component that moves money calls ApplyDelta instead of writing the
// balance directly.
type LedgerService interface {
	// ApplyDelta applies a signed balance change inside the caller's unit
	// of work, appending exactly one ledger entry
	ApplyDelta(ctx context.Context, uow UnitOfWork, accountID string, amount int64, entryType models.EntryType, referenceID *uuid.UUID, description string, metadata map[string]any) (*models.LedgerEntry, error)

	// GetBalance returns the current stored balance for an account
	GetBalance(ctx context.Context, accountID string) (int64, error)

	// EntriesForAccount returns the most recent ledger entries
	EntriesForAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)

	// ReplayBalance folds all entries for an account from zero and returns
	// the replayed balance alongside the stored one
	ReplayBalance(ctx context.Context, accountID string) (replayed int64, stored int64, err error)
}

// AccountService defines the interface for account provisioning and
// back-office adjustments
type AccountService interface {
	// GetOrCreateAccount retrieves an existing account or provisions a new
	// one with the welcome credit; referredBy is honored only at creation
	GetOrCreateAccount(ctx context.Context, accountID string, referredBy *string) (*models.Account, error)

	// GetAccount retrieves an account, failing when it does not exist
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// AdminAdjust applies a signed manual balance adjustment
	AdminAdjust(ctx context.Context, accountID string, amount int64, adminID, reason string) (*models.LedgerEntry, error)
}

// RequestService drives the deposit/withdrawal request lifecycle:
// Pending -> Approved | Rejected, each request decided exactly once.
type RequestService interface {
	// CreateDepositRequest records a pending deposit; the balance is not
	// touched until approval
	CreateDepositRequest(ctx context.Context, accountID string, amount int64, paymentMetadata map[string]any) (*models.TransferRequest, error)

	// CreateWithdrawalRequest records a pending withdrawal and immediately
	// escrows the full amount from the account
	CreateWithdrawalRequest(ctx context.Context, accountID string, amount int64, method *models.WithdrawalMethod) (*models.TransferRequest, error)

	// ApproveRequest finalizes a pending request. Deposit approvals credit
	// amount plus bonus and trigger the referral bonus; withdrawal
	// approvals only finalize status.
	ApproveRequest(ctx context.Context, requestID uuid.UUID, adminID string, notes string) (*models.DecisionResult, error)

	// RejectRequest rejects a pending request with a mandatory reason.
	// Withdrawal rejections refund the escrowed amount.
	RejectRequest(ctx context.Context, requestID uuid.UUID, adminID string, reason string) (*models.DecisionResult, error)

	// GetRequest retrieves a request by ID
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.TransferRequest, error)

	// ListRequests returns requests in a given status for the admin queue
	ListRequests(ctx context.Context, status models.RequestStatus, limit int) ([]*models.TransferRequest, error)

	// ListAccountRequests returns the most recent requests for one account
	ListAccountRequests(ctx context.Context, accountID string, limit int) ([]*models.TransferRequest, error)
}

// BettingService settles game rounds against the ledger
type BettingService interface {
	// ApplyGameResult records a completed round: one ledger entry and one
	// game round, written together. The caller has already verified the
	// account can cover betAmount.
	ApplyGameResult(ctx context.Context, accountID, gameID string, betAmount, winAmount int64, won bool) (*models.RoundResult, error)

	// PlayRound runs a full round: verifies balance, draws the outcome
	// through the win-probability policy, then settles
	PlayRound(ctx context.Context, accountID, gameID string, betAmount int64) (*models.RoundResult, error)
}

// ReportingService produces read-only aggregates for the admin dashboard
type ReportingService interface {
	// DashboardReport builds the dashboard aggregates using the supplied
	// now for today-window filters. Individual aggregate failures degrade
	// to zero values; the report itself never fails.
	DashboardReport(ctx context.Context, now time.Time) (*models.DashboardReport, error)
}
