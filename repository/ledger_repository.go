package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cashier/database"
	"cashier/models"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `
	id, account_id, entry_type, change_amount, balance_before, balance_after,
	reference_id, description, metadata, created_at`

// LedgerRepository implements the service.LedgerRepository interface.
// Entries are insert-only; there is no update or delete path.
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger entry repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger entry repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append writes one ledger entry
func (r *LedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	var metadataJSON []byte
	var err error

	if entry.Metadata != nil {
		if metadataJSON, err = json.Marshal(entry.Metadata); err != nil {
			return fmt.Errorf("failed to marshal entry metadata: %w", err)
		}
	}

	query := `
		INSERT INTO ledger_entries
		(id, account_id, entry_type, change_amount, balance_before, balance_after, reference_id, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.EntryType,
		entry.ChangeAmount,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ReferenceID,
		entry.Description,
		metadataJSON,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry for account %s: %w", entry.AccountID, err)
	}
	return nil
}

// GetByAccount returns the most recent entries for an account
func (r *LedgerRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetByAccountAsc returns all entries for an account in creation order,
// for balance replay
func (r *LedgerRepository) GetByAccountAsc(ctx context.Context, accountID string) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.EntryType,
			&entry.ChangeAmount,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ReferenceID,
			&entry.Description,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
