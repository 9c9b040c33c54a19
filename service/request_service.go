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

type requestService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
	cfg        *config.Config
}

// NewRequestService creates a new transfer request service
func NewRequestService(uowFactory UnitOfWorkFactory, ledger LedgerService, cfg *config.Config) RequestService {
	return &requestService{
		uowFactory: uowFactory,
		ledger:     ledger,
		cfg:        cfg,
	}
}

// CreateDepositRequest records a pending deposit. The balance is not
// touched; crediting happens only at approval.
func (s *requestService) CreateDepositRequest(ctx context.Context, accountID string, amount int64, paymentMetadata map[string]any) (*models.TransferRequest, error) {
	if amount < s.cfg.MinDeposit {
		return nil, newValidationError("amount", fmt.Sprintf("deposit must be at least %d", s.cfg.MinDeposit))
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	req := &models.TransferRequest{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            models.RequestKindDeposit,
		Amount:          amount,
		Status:          models.RequestStatusPending,
		PaymentMetadata: paymentMetadata,
	}

	if err := uow.RequestRepository().Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": req.ID,
		"accountID": accountID,
		"amount":    amount,
	}).Info("Deposit request created")

	return req, nil
}

// CreateWithdrawalRequest records a pending withdrawal and escrows the full
// amount immediately, so the user cannot withdraw the same funds twice
// while the request awaits a decision. Deposits credit at approval;
// withdrawals debit at creation.
func (s *requestService) CreateWithdrawalRequest(ctx context.Context, accountID string, amount int64, method *models.WithdrawalMethod) (*models.TransferRequest, error) {
	if amount < s.cfg.MinWithdrawal {
		return nil, newValidationError("amount", fmt.Sprintf("withdrawal must be at least %d", s.cfg.MinWithdrawal))
	}
	if amount > s.cfg.MaxWithdrawal {
		return nil, newValidationError("amount", fmt.Sprintf("withdrawal must not exceed %d", s.cfg.MaxWithdrawal))
	}
	if err := validateWithdrawalMethod(method); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	deduction := WithdrawalFee(amount, s.cfg.WithdrawalFeeBps)
	req := &models.TransferRequest{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            models.RequestKindWithdrawal,
		Amount:          amount,
		Status:          models.RequestStatusPending,
		DeductionAmount: deduction,
		FinalAmount:     amount - deduction,
		Method:          method,
	}

	if err := uow.RequestRepository().Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	if _, err := s.ledger.ApplyDelta(ctx, uow, accountID, -amount, models.EntryTypeWithdrawal, &req.ID, "withdrawal escrow", nil); err != nil {
		return nil, fmt.Errorf("failed to escrow withdrawal amount: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID":   req.ID,
		"accountID":   accountID,
		"amount":      amount,
		"finalAmount": req.FinalAmount,
		"method":      method.Kind,
	}).Info("Withdrawal request created, funds escrowed")

	return req, nil
}

func validateWithdrawalMethod(method *models.WithdrawalMethod) error {
	if method == nil {
		return newValidationError("method", "withdrawal method is required")
	}
	switch method.Kind {
	case models.WithdrawalMethodBank:
		if method.Bank == nil || method.Bank.AccountNumber == "" {
			return newValidationError("method.bank", "bank transfer details are required")
		}
	case models.WithdrawalMethodUSDT:
		if method.USDT == nil || method.USDT.WalletAddress == "" {
			return newValidationError("method.usdt", "USDT wallet details are required")
		}
	default:
		return newValidationError("method.kind", fmt.Sprintf("unknown withdrawal method %q", method.Kind))
	}
	return nil
}

// ApproveRequest finalizes a pending request exactly once. The terminal
// transition and the primary balance effects commit atomically; the
// referral bonus runs afterwards as a non-fatal secondary effect.
func (s *requestService) ApproveRequest(ctx context.Context, requestID uuid.UUID, adminID string, notes string) (*models.DecisionResult, error) {
	if adminID == "" {
		return nil, newValidationError("adminID", "admin identifier is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.RequestRepository().GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	result := &models.DecisionResult{Request: req}

	var bonus int64
	if req.Kind == models.RequestKindDeposit {
		bonus = DepositBonus(req.Amount, s.cfg.DepositBonusBps)
	}

	decided, err := uow.RequestRepository().MarkDecided(ctx, requestID, models.RequestStatusApproved, adminID, notes, bonus)
	if err != nil {
		return nil, fmt.Errorf("failed to mark request approved: %w", err)
	}
	if !decided {
		// Lost the race to a concurrent decision
		return nil, ErrAlreadyProcessed
	}

	switch req.Kind {
	case models.RequestKindDeposit:
		// Principal and bonus stay separate entries for auditability.
		if _, err := s.ledger.ApplyDelta(ctx, uow, req.AccountID, req.Amount, models.EntryTypeDeposit, &req.ID, "deposit approved", nil); err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}
		if bonus > 0 {
			if _, err := s.ledger.ApplyDelta(ctx, uow, req.AccountID, bonus, models.EntryTypeDepositBonus, &req.ID, "deposit bonus", nil); err != nil {
				return nil, fmt.Errorf("failed to credit deposit bonus: %w", err)
			}
		}
		// totalDeposited tracks the principal only, not the bonus.
		if err := uow.AccountRepository().AddDeposited(ctx, req.AccountID, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to update deposit accumulator: %w", err)
		}
		result.CreditedAmount = req.Amount + bonus

	case models.RequestKindWithdrawal:
		// The debit happened at request creation; approval only finalizes
		// status and the fee split for reporting.
		if err := uow.AccountRepository().AddWithdrawn(ctx, req.AccountID, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to update withdrawal accumulator: %w", err)
		}
	}

	req.Status = models.RequestStatusApproved
	req.BonusAmount = bonus
	req.DecidedBy = &adminID

	uow.EventBus().Publish(events.RequestDecidedEvent{
		RequestID: req.ID.String(),
		AccountID: req.AccountID,
		Kind:      req.Kind,
		Status:    models.RequestStatusApproved,
		Amount:    req.Amount,
		DecidedBy: adminID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": req.ID,
		"accountID": req.AccountID,
		"kind":      req.Kind,
		"amount":    req.Amount,
		"bonus":     bonus,
		"adminID":   adminID,
	}).Info("Request approved")

	if req.Kind == models.RequestKindDeposit {
		s.creditReferrer(ctx, req, result)
	}

	return result, nil
}

// creditReferrer pays the single-hop referral bonus after a deposit
// approval has committed. Failure leaves the approval in place: the
// outcome is recorded on the result as a SecondaryEffectError instead of
// rolling back the deposit.
func (s *requestService) creditReferrer(ctx context.Context, req *models.TransferRequest, result *models.DecisionResult) {
	err := func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		account, err := uow.AccountRepository().GetByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.ReferredBy == nil {
			return nil
		}

		bonus := ReferralBonus(req.Amount, s.cfg.ReferralBonusBps)
		if bonus <= 0 {
			return nil
		}

		referrerID := *account.ReferredBy
		metadata := map[string]any{"referred_account_id": req.AccountID}
		if _, err := s.ledger.ApplyDelta(ctx, uow, referrerID, bonus, models.EntryTypeReferralBonus, &req.ID, "referral bonus", metadata); err != nil {
			return fmt.Errorf("failed to credit referrer %s: %w", referrerID, err)
		}
		if err := uow.AccountRepository().AddReferralEarnings(ctx, referrerID, bonus); err != nil {
			return fmt.Errorf("failed to update referral accumulators: %w", err)
		}

		uow.EventBus().Publish(events.ReferralBonusEvent{
			ReferrerID:  referrerID,
			ReferredID:  req.AccountID,
			BonusAmount: bonus,
			RequestID:   req.ID.String(),
		})

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result.ReferralCredited = bonus
		return nil
	}()
	if err != nil {
		log.WithFields(log.Fields{
			"requestID": req.ID,
			"accountID": req.AccountID,
			"error":     err,
		}).Error("Referral bonus credit failed; deposit approval stands")
		result.SecondaryFailure = &SecondaryEffectError{Step: "referral_bonus", Err: err}
	}
}

// RejectRequest rejects a pending request exactly once. A rejected
// withdrawal refunds the escrowed amount, mirroring the creation debit.
func (s *requestService) RejectRequest(ctx context.Context, requestID uuid.UUID, adminID string, reason string) (*models.DecisionResult, error) {
	if adminID == "" {
		return nil, newValidationError("adminID", "admin identifier is required")
	}
	if reason == "" {
		return nil, newValidationError("reason", "rejection reason is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.RequestRepository().GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	decided, err := uow.RequestRepository().MarkDecided(ctx, requestID, models.RequestStatusRejected, adminID, reason, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to mark request rejected: %w", err)
	}
	if !decided {
		return nil, ErrAlreadyProcessed
	}

	result := &models.DecisionResult{Request: req}

	if req.Kind == models.RequestKindWithdrawal {
		// Refund the full escrowed amount, not the fee-adjusted payout.
		if _, err := s.ledger.ApplyDelta(ctx, uow, req.AccountID, req.Amount, models.EntryTypeWithdrawalRefund, &req.ID, "withdrawal rejected, escrow refunded", nil); err != nil {
			return nil, fmt.Errorf("failed to refund escrowed amount: %w", err)
		}
		result.RefundedAmount = req.Amount
	}

	req.Status = models.RequestStatusRejected
	req.Reason = reason
	req.DecidedBy = &adminID

	uow.EventBus().Publish(events.RequestDecidedEvent{
		RequestID: req.ID.String(),
		AccountID: req.AccountID,
		Kind:      req.Kind,
		Status:    models.RequestStatusRejected,
		Amount:    req.Amount,
		DecidedBy: adminID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": req.ID,
		"accountID": req.AccountID,
		"kind":      req.Kind,
		"reason":    reason,
		"adminID":   adminID,
	}).Info("Request rejected")

	return result, nil
}

// GetRequest retrieves a request by ID
func (s *requestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.TransferRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.RequestRepository().GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ListRequests returns requests in a given status for the admin queue
func (s *requestService) ListRequests(ctx context.Context, status models.RequestStatus, limit int) ([]*models.TransferRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.RequestRepository().ListByStatus(ctx, status, limit)
}

// ListAccountRequests returns the most recent requests for one account
func (s *requestService) ListAccountRequests(ctx context.Context, accountID string, limit int) ([]*models.TransferRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.RequestRepository().ListByAccount(ctx, accountID, limit)
}
