package service

import (
	"context"
	"fmt"
	"math/rand"

	"cashier/events"
	"cashier/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
	policy     WinProbabilityPolicy
	rng        func() float64
}

// NewBettingService creates a new betting service. The policy decides win
// probability for PlayRound; ApplyGameResult bypasses it entirely.
func NewBettingService(uowFactory UnitOfWorkFactory, ledger LedgerService, policy WinProbabilityPolicy) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		ledger:     ledger,
		policy:     policy,
		rng:        rand.Float64,
	}
}

// ApplyGameResult settles a completed round: exactly one ledger entry and
// one game round record, written in the same transaction. The caller has
// already verified the account can cover betAmount; the ledger clamp is
// only a backstop.
func (s *bettingService) ApplyGameResult(ctx context.Context, accountID, gameID string, betAmount, winAmount int64, won bool) (*models.RoundResult, error) {
	if betAmount <= 0 {
		return nil, newValidationError("betAmount", "bet amount must be positive")
	}
	if winAmount < 0 {
		return nil, newValidationError("winAmount", "win amount must not be negative")
	}
	if !won && winAmount != 0 {
		return nil, newValidationError("winAmount", "win amount must be zero on a loss")
	}
	if gameID == "" {
		return nil, newValidationError("gameID", "game identifier is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	result, err := s.settle(ctx, uow, accountID, gameID, betAmount, winAmount, won)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// PlayRound runs a full round for an account: verifies the balance covers
// the bet, draws the outcome through the win-probability policy and
// settles, all in one transaction.
func (s *bettingService) PlayRound(ctx context.Context, accountID, gameID string, betAmount int64) (*models.RoundResult, error) {
	if betAmount <= 0 {
		return nil, newValidationError("betAmount", "bet amount must be positive")
	}
	if gameID == "" {
		return nil, newValidationError("gameID", "game identifier is required")
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
	if account.Balance < betAmount {
		return nil, ErrInsufficientBalance
	}

	probability := s.policy(account.Stats())
	won := s.rng() < probability

	// Even-money payout: a win credits the stake as profit, a loss debits it.
	var winAmount int64
	if won {
		winAmount = betAmount
	}

	result, err := s.settle(ctx, uow, accountID, gameID, betAmount, winAmount, won)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID":   accountID,
		"gameID":      gameID,
		"betAmount":   betAmount,
		"won":         won,
		"probability": probability,
	}).Info("Game round played")

	return result, nil
}

func (s *bettingService) settle(ctx context.Context, uow UnitOfWork, accountID, gameID string, betAmount, winAmount int64, won bool) (*models.RoundResult, error) {
	roundID := uuid.New()

	var entry *models.LedgerEntry
	var err error
	if won {
		entry, err = s.ledger.ApplyDelta(ctx, uow, accountID, winAmount, models.EntryTypeGameWin, &roundID, fmt.Sprintf("win on %s", gameID), nil)
	} else {
		entry, err = s.ledger.ApplyDelta(ctx, uow, accountID, -betAmount, models.EntryTypeGameLoss, &roundID, fmt.Sprintf("loss on %s", gameID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle round against ledger: %w", err)
	}

	if err := uow.AccountRepository().RecordGameOutcome(ctx, accountID, won, betAmount, winAmount); err != nil {
		return nil, fmt.Errorf("failed to record game outcome: %w", err)
	}

	round := &models.GameRound{
		ID:            roundID,
		AccountID:     accountID,
		GameID:        gameID,
		BetAmount:     betAmount,
		WinAmount:     winAmount,
		Won:           won,
		LedgerEntryID: entry.ID,
	}
	if err := uow.GameRoundRepository().Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create game round record: %w", err)
	}

	uow.EventBus().Publish(events.GameRoundEvent{
		AccountID: accountID,
		GameID:    gameID,
		BetAmount: betAmount,
		WinAmount: winAmount,
		Won:       won,
	})

	return &models.RoundResult{
		Won:        won,
		BetAmount:  betAmount,
		WinAmount:  winAmount,
		NewBalance: entry.BalanceAfter,
		Round:      round,
	}, nil
}
