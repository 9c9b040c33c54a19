package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, balance, total_deposited, total_withdrawn, total_won, total_lost,
	referral_earnings, referral_count, games_played, current_streak,
	referred_by, created_at, updated_at`

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Balance,
		&account.TotalDeposited,
		&account.TotalWithdrawn,
		&account.TotalWon,
		&account.TotalLost,
		&account.ReferralEarnings,
		&account.ReferralCount,
		&account.GamesPlayed,
		&account.CurrentStreak,
		&account.ReferredBy,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its ID. Returns nil when not found.
func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// GetByIDForUpdate retrieves an account by its ID taking a row lock, so a
// balance read-compute-write cannot interleave with another writer.
// Only valid inside a transaction. Returns nil when not found.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return account, nil
}

// Create creates a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, accountID string, referredBy *string, initialBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, balance, referred_by)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID, initialBalance, referredBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", accountID, err)
	}
	return account, nil
}

// UpdateBalance sets an account's balance. Callers hold the row lock via
// GetByIDForUpdate within the same transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}
	return nil
}

// AddDeposited increments the lifetime deposit accumulator
func (r *AccountRepository) AddDeposited(ctx context.Context, accountID string, amount int64) error {
	return r.addAccumulator(ctx, accountID, "total_deposited", amount)
}

// AddWithdrawn increments the lifetime withdrawal accumulator
func (r *AccountRepository) AddWithdrawn(ctx context.Context, accountID string, amount int64) error {
	return r.addAccumulator(ctx, accountID, "total_withdrawn", amount)
}

func (r *AccountRepository) addAccumulator(ctx context.Context, accountID, column string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("accumulator amount must be non-negative")
	}

	// column is one of the fixed accumulator names above, never user input
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s = %s + $1, updated_at = NOW()
		WHERE id = $2
	`, column, column)

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to update %s for account %s: %w", column, accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}
	return nil
}

// AddReferralEarnings increments the referral accumulators on the referrer
func (r *AccountRepository) AddReferralEarnings(ctx context.Context, accountID string, amount int64) error {
	query := `
		UPDATE accounts
		SET referral_earnings = referral_earnings + $1,
		    referral_count = referral_count + 1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to update referral earnings for account %s: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}
	return nil
}

// RecordGameOutcome updates the win/loss accumulators and the streak
// counter for a settled round. The streak extends in the round's direction
// or resets to length one when the direction flips.
func (r *AccountRepository) RecordGameOutcome(ctx context.Context, accountID string, won bool, betAmount, winAmount int64) error {
	var query string
	var amount int64
	if won {
		query = `
			UPDATE accounts
			SET total_won = total_won + $1,
			    games_played = games_played + 1,
			    current_streak = CASE WHEN current_streak > 0 THEN current_streak + 1 ELSE 1 END,
			    updated_at = NOW()
			WHERE id = $2
		`
		amount = winAmount
	} else {
		query = `
			UPDATE accounts
			SET total_lost = total_lost + $1,
			    games_played = games_played + 1,
			    current_streak = CASE WHEN current_streak < 0 THEN current_streak - 1 ELSE -1 END,
			    updated_at = NOW()
			WHERE id = $2
		`
		amount = betAmount
	}

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to record game outcome for account %s: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}
	return nil
}

// Aggregate returns platform-wide account totals for reporting
func (r *AccountRepository) Aggregate(ctx context.Context) (accounts int64, balance int64, deposited int64, withdrawn int64, err error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(balance), 0),
		       COALESCE(SUM(total_deposited), 0),
		       COALESCE(SUM(total_withdrawn), 0)
		FROM accounts
	`

	if err = r.q.QueryRow(ctx, query).Scan(&accounts, &balance, &deposited, &withdrawn); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to aggregate accounts: %w", err)
	}
	return accounts, balance, deposited, withdrawn, nil
}
