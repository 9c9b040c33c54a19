package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cashier/database"
	"cashier/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `
	id, account_id, kind, amount, status, bonus_amount, deduction_amount,
	final_amount, method, payment_metadata, reason, decided_by, decided_at,
	created_at`

// RequestRepository implements the service.RequestRepository interface
type RequestRepository struct {
	q queryable
}

// NewRequestRepository creates a new transfer request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{q: db.Pool}
}

// newRequestRepositoryWithTx creates a new transfer request repository with a transaction
func newRequestRepositoryWithTx(tx queryable) *RequestRepository {
	return &RequestRepository{q: tx}
}

func scanRequest(row pgx.Row) (*models.TransferRequest, error) {
	var req models.TransferRequest
	var methodJSON, metadataJSON []byte

	err := row.Scan(
		&req.ID,
		&req.AccountID,
		&req.Kind,
		&req.Amount,
		&req.Status,
		&req.BonusAmount,
		&req.DeductionAmount,
		&req.FinalAmount,
		&methodJSON,
		&metadataJSON,
		&req.Reason,
		&req.DecidedBy,
		&req.DecidedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(methodJSON) > 0 {
		if err := json.Unmarshal(methodJSON, &req.Method); err != nil {
			return nil, fmt.Errorf("failed to unmarshal withdrawal method: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &req.PaymentMetadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment metadata: %w", err)
		}
	}
	return &req, nil
}

// Create persists a new pending transfer request
func (r *RequestRepository) Create(ctx context.Context, req *models.TransferRequest) error {
	var methodJSON, metadataJSON []byte
	var err error

	if req.Method != nil {
		if methodJSON, err = json.Marshal(req.Method); err != nil {
			return fmt.Errorf("failed to marshal withdrawal method: %w", err)
		}
	}
	if req.PaymentMetadata != nil {
		if metadataJSON, err = json.Marshal(req.PaymentMetadata); err != nil {
			return fmt.Errorf("failed to marshal payment metadata: %w", err)
		}
	}

	query := `
		INSERT INTO transfer_requests
		(id, account_id, kind, amount, status, deduction_amount, final_amount, method, payment_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err = r.q.QueryRow(ctx, query,
		req.ID,
		req.AccountID,
		req.Kind,
		req.Amount,
		req.Status,
		req.DeductionAmount,
		req.FinalAmount,
		methodJSON,
		metadataJSON,
	).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s request for account %s: %w", req.Kind, req.AccountID, err)
	}
	return nil
}

// GetByID retrieves a transfer request. Returns nil when not found.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM transfer_requests WHERE id = $1`

	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer request %s: %w", id, err)
	}
	return req, nil
}

// GetByIDForUpdate retrieves a transfer request taking a row lock.
// Only valid inside a transaction. Returns nil when not found.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM transfer_requests WHERE id = $1 FOR UPDATE`

	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transfer request %s: %w", id, err)
	}
	return req, nil
}

// MarkDecided transitions a request out of pending. The update is guarded
// by status = 'pending' so exactly one decision can ever land; it returns
// false when the request was already decided (or does not exist).
func (r *RequestRepository) MarkDecided(ctx context.Context, id uuid.UUID, status models.RequestStatus, decidedBy string, reason string, bonusAmount int64) (bool, error) {
	query := `
		UPDATE transfer_requests
		SET status = $1, decided_by = $2, decided_at = NOW(), reason = $3, bonus_amount = $4
		WHERE id = $5 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, status, decidedBy, reason, bonusAmount, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark request %s as %s: %w", id, status, err)
	}
	return result.RowsAffected() == 1, nil
}

// ListByStatus returns requests in a given status, oldest first so admins
// work the queue in arrival order
func (r *RequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus, limit int) ([]*models.TransferRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM transfer_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s requests: %w", status, err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByAccount returns the most recent requests for one account
func (r *RequestRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransferRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM transfer_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*models.TransferRequest, error) {
	var requests []*models.TransferRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfer requests: %w", err)
	}
	return requests, nil
}

// AggregatePending returns count and sum of pending requests of one kind
func (r *RequestRepository) AggregatePending(ctx context.Context, kind models.RequestKind) (models.RequestAggregate, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM transfer_requests
		WHERE status = 'pending' AND kind = $1
	`

	var agg models.RequestAggregate
	if err := r.q.QueryRow(ctx, query, kind).Scan(&agg.Count, &agg.Sum); err != nil {
		return models.RequestAggregate{}, fmt.Errorf("failed to aggregate pending %s requests: %w", kind, err)
	}
	return agg, nil
}

// AggregateDecidedBetween returns count and sum of approved requests of one
// kind decided within [from, to)
func (r *RequestRepository) AggregateDecidedBetween(ctx context.Context, kind models.RequestKind, from, to time.Time) (models.RequestAggregate, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM transfer_requests
		WHERE status = 'approved' AND kind = $1 AND decided_at >= $2 AND decided_at < $3
	`

	var agg models.RequestAggregate
	if err := r.q.QueryRow(ctx, query, kind, from, to).Scan(&agg.Count, &agg.Sum); err != nil {
		return models.RequestAggregate{}, fmt.Errorf("failed to aggregate decided %s requests: %w", kind, err)
	}
	return agg, nil
}

// DecisionCounts returns how many requests have been approved and rejected
// over all time
func (r *RequestRepository) DecisionCounts(ctx context.Context) (approved int64, rejected int64, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM transfer_requests
	`

	if err = r.q.QueryRow(ctx, query).Scan(&approved, &rejected); err != nil {
		return 0, 0, fmt.Errorf("failed to count request decisions: %w", err)
	}
	return approved, rejected, nil
}
