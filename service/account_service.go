package service

import (
	"context"
	"fmt"

	"cashier/config"
	"cashier/events"
	"cashier/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
	cfg        *config.Config
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, ledger LedgerService, cfg *config.Config) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		ledger:     ledger,
		cfg:        cfg,
	}
}

// GetOrCreateAccount retrieves an existing account or provisions a new one
// seeded with the welcome credit. The referrer link is set once here and
// never changes afterwards.
func (s *accountService) GetOrCreateAccount(ctx context.Context, accountID string, referredBy *string) (*models.Account, error) {
	if accountID == "" {
		return nil, newValidationError("accountID", "account identifier is required")
	}
	if referredBy != nil && *referredBy == accountID {
		return nil, newValidationError("referredBy", "an account cannot refer itself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	if referredBy != nil {
		referrer, err := uow.AccountRepository().GetByID(ctx, *referredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to check referrer: %w", err)
		}
		if referrer == nil {
			return nil, newValidationError("referredBy", "referring account does not exist")
		}
	}

	account, err = uow.AccountRepository().Create(ctx, accountID, referredBy, s.cfg.WelcomeBonus)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// The welcome credit is seeded on the row itself, so the ledger entry
	// is written directly rather than through ApplyDelta.
	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		EntryType:     models.EntryTypeWelcomeBonus,
		ChangeAmount:  s.cfg.WelcomeBonus,
		BalanceBefore: 0,
		BalanceAfter:  s.cfg.WelcomeBonus,
		Description:   "welcome bonus",
	}
	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record welcome bonus: %w", err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:      accountID,
		ReferredBy:     referredBy,
		InitialBalance: s.cfg.WelcomeBonus,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID":      accountID,
		"initialBalance": s.cfg.WelcomeBonus,
	}).Info("Account created")

	return account, nil
}

// GetAccount retrieves an account, failing when it does not exist
func (s *accountService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// AdminAdjust applies a signed manual balance adjustment with a mandatory
// reason, recorded as an admin_adjustment ledger entry
func (s *accountService) AdminAdjust(ctx context.Context, accountID string, amount int64, adminID, reason string) (*models.LedgerEntry, error) {
	if amount == 0 {
		return nil, newValidationError("amount", "adjustment amount must be non-zero")
	}
	if adminID == "" {
		return nil, newValidationError("adminID", "admin identifier is required")
	}
	if reason == "" {
		return nil, newValidationError("reason", "adjustment reason is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	metadata := map[string]any{"admin_id": adminID}
	entry, err := s.ledger.ApplyDelta(ctx, uow, accountID, amount, models.EntryTypeAdminAdjustment, nil, reason, metadata)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"amount":    amount,
		"adminID":   adminID,
	}).Info("Admin balance adjustment applied")

	return entry, nil
}
