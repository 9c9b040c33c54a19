package service

import (
	"context"
	"time"

	"cashier/events"
	"cashier/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, accountID string, referredBy *string, initialBalance int64) (*models.Account, error) {
	args := m.Called(ctx, accountID, referredBy, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, accountID string, newBalance int64) error {
	args := m.Called(ctx, accountID, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) AddDeposited(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) AddWithdrawn(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) AddReferralEarnings(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) RecordGameOutcome(ctx context.Context, accountID string, won bool, betAmount, winAmount int64) error {
	args := m.Called(ctx, accountID, won, betAmount, winAmount)
	return args.Error(0)
}

func (m *MockAccountRepository) Aggregate(ctx context.Context) (int64, int64, int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Get(2).(int64), args.Get(3).(int64), args.Error(4)
}

// MockRequestRepository is a mock implementation of RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *models.TransferRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferRequest), args.Error(1)
}

func (m *MockRequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferRequest), args.Error(1)
}

func (m *MockRequestRepository) MarkDecided(ctx context.Context, id uuid.UUID, status models.RequestStatus, decidedBy string, reason string, bonusAmount int64) (bool, error) {
	args := m.Called(ctx, id, status, decidedBy, reason, bonusAmount)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus, limit int) ([]*models.TransferRequest, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransferRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransferRequest, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransferRequest), args.Error(1)
}

func (m *MockRequestRepository) AggregatePending(ctx context.Context, kind models.RequestKind) (models.RequestAggregate, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(models.RequestAggregate), args.Error(1)
}

func (m *MockRequestRepository) AggregateDecidedBetween(ctx context.Context, kind models.RequestKind, from, to time.Time) (models.RequestAggregate, error) {
	args := m.Called(ctx, kind, from, to)
	return args.Get(0).(models.RequestAggregate), args.Error(1)
}

func (m *MockRequestRepository) DecisionCounts(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByAccountAsc(ctx context.Context, accountID string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockGameRoundRepository is a mock implementation of GameRoundRepository
type MockGameRoundRepository struct {
	mock.Mock
}

func (m *MockGameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockGameRoundRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.GameRound, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameRound), args.Error(1)
}

func (m *MockGameRoundRepository) AggregateBetween(ctx context.Context, from, to time.Time) (int64, int64, int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Get(1).(int64), args.Get(2).(int64), args.Error(3)
}

// RecordingPublisher collects published events for assertions
type RecordingPublisher struct {
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are mocked; repository getters return whatever was set.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo   AccountRepository
	requestRepo   RequestRepository
	ledgerRepo    LedgerRepository
	gameRoundRepo GameRoundRepository
	publisher     *RecordingPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, requestRepo RequestRepository, ledgerRepo LedgerRepository, gameRoundRepo GameRoundRepository) {
	m.accountRepo = accountRepo
	m.requestRepo = requestRepo
	m.ledgerRepo = ledgerRepo
	m.gameRoundRepo = gameRoundRepo
	m.publisher = &RecordingPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) RequestRepository() RequestRepository {
	return m.requestRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) GameRoundRepository() GameRoundRepository {
	return m.gameRoundRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.publisher.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
