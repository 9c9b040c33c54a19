package service

import (
	"context"
	"fmt"

	"cashier/events"
	"cashier/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// ApplyDelta applies a signed balance change to an account inside the
// caller's unit of work. The account row is locked for the read-compute-
// write so concurrent deltas on the same account serialize. A debit that
// would push the balance below zero is clamped at zero; callers are
// expected to have verified sufficiency, the clamp is a backstop.
func (s *ledgerService) ApplyDelta(ctx context.Context, uow UnitOfWork, accountID string, amount int64, entryType models.EntryType, referenceID *uuid.UUID, description string, metadata map[string]any) (*models.LedgerEntry, error) {
	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	newBalance := account.Balance + amount
	if newBalance < 0 {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"balance":   account.Balance,
			"amount":    amount,
			"entryType": entryType,
		}).Warn("Debit clamped at zero balance")

		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["requested_amount"] = amount
		newBalance = 0
	}

	if err := uow.AccountRepository().UpdateBalance(ctx, accountID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	// ChangeAmount is the applied delta, so balance_after - balance_before
	// always equals it even when the clamp fired.
	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		EntryType:     entryType,
		ChangeAmount:  newBalance - account.Balance,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		ReferenceID:   referenceID,
		Description:   description,
		Metadata:      metadata,
	}

	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:    accountID,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		EntryType:    entryType,
		ChangeAmount: entry.ChangeAmount,
	})

	return entry, nil
}

// GetBalance returns the current stored balance for an account
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, ErrAccountNotFound
	}
	return account.Balance, nil
}

// EntriesForAccount returns the most recent ledger entries for an account
func (s *ledgerService) EntriesForAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().GetByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}

// ReplayBalance folds all ledger entries for an account from zero. The
// replayed value must reconstruct the stored balance; the admin audit
// endpoint compares the two.
func (s *ledgerService) ReplayBalance(ctx context.Context, accountID string) (int64, int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, 0, ErrAccountNotFound
	}

	entries, err := uow.LedgerRepository().GetByAccountAsc(ctx, accountID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	var replayed int64
	for _, entry := range entries {
		replayed += entry.ChangeAmount
	}

	return replayed, account.Balance, nil
}
