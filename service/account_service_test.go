package service

import (
	"context"
	"testing"

	"cashier/config"
	"cashier/events"
	"cashier/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		WelcomeBonus:     5000,
		MinDeposit:       10000,
		MinWithdrawal:    50000,
		MaxWithdrawal:    10000000,
		DepositBonusBps:  500,
		ReferralBonusBps: 500,
		WithdrawalFeeBps: 200,
		Environment:      "test",
	}
}

func TestAccountService_GetOrCreateAccount_New(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockLedgerRepo, nil)

	cfg := testConfig()
	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), cfg)

	created := &models.Account{ID: "acct-1", Balance: 5000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, "acct-1").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, "acct-1", (*string)(nil), int64(5000)).Return(created, nil)

	mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.AccountID == "acct-1" &&
			e.EntryType == models.EntryTypeWelcomeBonus &&
			e.ChangeAmount == 5000 &&
			e.BalanceBefore == 0 &&
			e.BalanceAfter == 5000
	})).Return(nil)

	account, err := service.GetOrCreateAccount(ctx, "acct-1", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), account.Balance)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	createdEvent, ok := published[0].(events.AccountCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "acct-1", createdEvent.AccountID)
	assert.Equal(t, int64(5000), createdEvent.InitialBalance)

	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestAccountService_GetOrCreateAccount_Existing(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockLedgerRepo, nil)

	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), testConfig())

	existing := &models.Account{ID: "acct-1", Balance: 123456}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, "acct-1").Return(existing, nil)

	account, err := service.GetOrCreateAccount(ctx, "acct-1", nil)

	require.NoError(t, err)
	assert.Equal(t, existing, account)

	// No second welcome bonus
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockLedgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAccountService_GetOrCreateAccount_WithReferrer(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockLedgerRepo, nil)

	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), testConfig())

	referrer := "acct-referrer"
	created := &models.Account{ID: "acct-1", Balance: 5000, ReferredBy: &referrer}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, "acct-1").Return(nil, nil)
	mockAccountRepo.On("GetByID", ctx, "acct-referrer").Return(&models.Account{ID: "acct-referrer"}, nil)
	mockAccountRepo.On("Create", ctx, "acct-1", &referrer, int64(5000)).Return(created, nil)
	mockLedgerRepo.On("Append", ctx, mock.Anything).Return(nil)

	account, err := service.GetOrCreateAccount(ctx, "acct-1", &referrer)

	require.NoError(t, err)
	require.NotNil(t, account.ReferredBy)
	assert.Equal(t, "acct-referrer", *account.ReferredBy)
}

func TestAccountService_GetOrCreateAccount_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), testConfig())

	t.Run("empty account id", func(t *testing.T) {
		_, err := service.GetOrCreateAccount(ctx, "", nil)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "accountID", validationErr.Field)
	})

	t.Run("self referral", func(t *testing.T) {
		self := "acct-1"
		_, err := service.GetOrCreateAccount(ctx, "acct-1", &self)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "referredBy", validationErr.Field)
	})
}

func TestAccountService_GetOrCreateAccount_ReferrerMissing(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), testConfig())

	ghost := "acct-ghost"

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, "acct-1").Return(nil, nil)
	mockAccountRepo.On("GetByID", ctx, "acct-ghost").Return(nil, nil)

	_, err := service.GetOrCreateAccount(ctx, "acct-1", &ghost)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "referredBy", validationErr.Field)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountService_AdminAdjust(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockLedgerRepo, nil)

	service := NewAccountService(mockFactory, NewLedgerService(mockFactory), testConfig())

	t.Run("validation", func(t *testing.T) {
		_, err := service.AdminAdjust(ctx, "acct-1", 0, "admin-1", "correction")
		assert.Error(t, err)

		_, err = service.AdminAdjust(ctx, "acct-1", 500, "", "correction")
		assert.Error(t, err)

		_, err = service.AdminAdjust(ctx, "acct-1", 500, "admin-1", "")
		assert.Error(t, err)
	})

	t.Run("applies signed adjustment", func(t *testing.T) {
		account := &models.Account{ID: "acct-1", Balance: 2000}

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockAccountRepo.On("GetByIDForUpdate", ctx, "acct-1").Return(account, nil)
		mockAccountRepo.On("UpdateBalance", ctx, "acct-1", int64(1500)).Return(nil)

		mockLedgerRepo.On("Append", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
			return e.EntryType == models.EntryTypeAdminAdjustment &&
				e.ChangeAmount == -500 &&
				e.Description == "manual correction" &&
				e.Metadata["admin_id"] == "admin-1"
		})).Return(nil)

		entry, err := service.AdminAdjust(ctx, "acct-1", -500, "admin-1", "manual correction")

		require.NoError(t, err)
		assert.Equal(t, int64(1500), entry.BalanceAfter)
		mockLedgerRepo.AssertExpectations(t)
	})
}
