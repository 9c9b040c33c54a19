package repository

import (
	"context"
	"fmt"
	"time"

	"cashier/database"
	"cashier/models"
)

// GameRoundRepository implements the service.GameRoundRepository interface.
// Rounds are insert-only.
type GameRoundRepository struct {
	q queryable
}

// NewGameRoundRepository creates a new game round repository
func NewGameRoundRepository(db *database.DB) *GameRoundRepository {
	return &GameRoundRepository{q: db.Pool}
}

// newGameRoundRepositoryWithTx creates a new game round repository with a transaction
func newGameRoundRepositoryWithTx(tx queryable) *GameRoundRepository {
	return &GameRoundRepository{q: tx}
}

// Create persists a completed game round
func (r *GameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	query := `
		INSERT INTO game_rounds
		(id, account_id, game_id, bet_amount, win_amount, won, ledger_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		round.ID,
		round.AccountID,
		round.GameID,
		round.BetAmount,
		round.WinAmount,
		round.Won,
		round.LedgerEntryID,
	).Scan(&round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game round for account %s: %w", round.AccountID, err)
	}
	return nil
}

// GetByAccount returns the most recent rounds for an account
func (r *GameRoundRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.GameRound, error) {
	query := `
		SELECT id, account_id, game_id, bet_amount, win_amount, won, ledger_entry_id, created_at
		FROM game_rounds
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get game rounds for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var rounds []*models.GameRound
	for rows.Next() {
		var round models.GameRound
		err := rows.Scan(
			&round.ID,
			&round.AccountID,
			&round.GameID,
			&round.BetAmount,
			&round.WinAmount,
			&round.Won,
			&round.LedgerEntryID,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game round: %w", err)
		}
		rounds = append(rounds, &round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rounds: %w", err)
	}
	return rounds, nil
}

// AggregateBetween returns round count, total wagered and total paid out
// within [from, to)
func (r *GameRoundRepository) AggregateBetween(ctx context.Context, from, to time.Time) (rounds int64, wagered int64, paidOut int64, err error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(bet_amount), 0),
		       COALESCE(SUM(win_amount), 0)
		FROM game_rounds
		WHERE created_at >= $1 AND created_at < $2
	`

	if err = r.q.QueryRow(ctx, query, from, to).Scan(&rounds, &wagered, &paidOut); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to aggregate game rounds: %w", err)
	}
	return rounds, wagered, paidOut, nil
}
