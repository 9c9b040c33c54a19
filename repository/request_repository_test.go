package repository

import (
	"context"
	"testing"
	"time"

	"cashier/models"
	"cashier/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, "acct-1", nil, 100000)
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		req, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, req)
	})

	t.Run("deposit round trip", func(t *testing.T) {
		original := testutil.CreateTestDepositRequest("acct-1", 10000)
		require.NoError(t, repo.Create(ctx, original))
		assert.False(t, original.CreatedAt.IsZero())

		fetched, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)

		assert.Equal(t, models.RequestKindDeposit, fetched.Kind)
		assert.Equal(t, int64(10000), fetched.Amount)
		assert.Equal(t, models.RequestStatusPending, fetched.Status)
		assert.Nil(t, fetched.Method)
		assert.Equal(t, "test", fetched.PaymentMetadata["channel"])
		assert.Nil(t, fetched.DecidedBy)
		assert.Nil(t, fetched.DecidedAt)
	})

	t.Run("withdrawal method round trip", func(t *testing.T) {
		original := testutil.CreateTestWithdrawalRequest("acct-1", 50000, 1000)
		require.NoError(t, repo.Create(ctx, original))

		fetched, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)

		assert.Equal(t, int64(1000), fetched.DeductionAmount)
		assert.Equal(t, int64(49000), fetched.FinalAmount)
		require.NotNil(t, fetched.Method)
		assert.Equal(t, models.WithdrawalMethodBank, fetched.Method.Kind)
		require.NotNil(t, fetched.Method.Bank)
		assert.Equal(t, "12345678", fetched.Method.Bank.AccountNumber)
		assert.Nil(t, fetched.Method.USDT)
	})

	t.Run("unknown account rejected", func(t *testing.T) {
		req := testutil.CreateTestDepositRequest("acct-ghost", 10000)
		assert.Error(t, repo.Create(ctx, req)) // foreign key violation
	})
}

func TestRequestRepository_MarkDecided_ExactlyOnce(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, "acct-1", nil, 100000)
	require.NoError(t, err)

	req := testutil.CreateTestDepositRequest("acct-1", 10000)
	require.NoError(t, repo.Create(ctx, req))

	t.Run("first decision lands", func(t *testing.T) {
		decided, err := repo.MarkDecided(ctx, req.ID, models.RequestStatusApproved, "admin-1", "", 500)
		require.NoError(t, err)
		assert.True(t, decided)

		fetched, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, fetched.Status)
		assert.Equal(t, int64(500), fetched.BonusAmount)
		require.NotNil(t, fetched.DecidedBy)
		assert.Equal(t, "admin-1", *fetched.DecidedBy)
		assert.NotNil(t, fetched.DecidedAt)
	})

	t.Run("second decision is refused", func(t *testing.T) {
		decided, err := repo.MarkDecided(ctx, req.ID, models.RequestStatusRejected, "admin-2", "too late", 0)
		require.NoError(t, err)
		assert.False(t, decided)

		// The first decision is untouched
		fetched, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, fetched.Status)
		assert.Equal(t, "admin-1", *fetched.DecidedBy)
	})

	t.Run("missing request", func(t *testing.T) {
		decided, err := repo.MarkDecided(ctx, uuid.New(), models.RequestStatusApproved, "admin-1", "", 0)
		require.NoError(t, err)
		assert.False(t, decided)
	})
}

func TestRequestRepository_Listing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, "acct-1", nil, 100000)
	require.NoError(t, err)
	_, err = accountRepo.Create(ctx, "acct-2", nil, 100000)
	require.NoError(t, err)

	first := testutil.CreateTestDepositRequest("acct-1", 10000)
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(10 * time.Millisecond)
	second := testutil.CreateTestDepositRequest("acct-2", 20000)
	require.NoError(t, repo.Create(ctx, second))
	time.Sleep(10 * time.Millisecond)
	third := testutil.CreateTestDepositRequest("acct-1", 30000)
	require.NoError(t, repo.Create(ctx, third))

	t.Run("queue is oldest first", func(t *testing.T) {
		pending, err := repo.ListByStatus(ctx, models.RequestStatusPending, 100)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, second.ID, pending[1].ID)
		assert.Equal(t, third.ID, pending[2].ID)
	})

	t.Run("limit respected", func(t *testing.T) {
		pending, err := repo.ListByStatus(ctx, models.RequestStatusPending, 2)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("account history is newest first", func(t *testing.T) {
		history, err := repo.ListByAccount(ctx, "acct-1", 100)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, third.ID, history[0].ID)
		assert.Equal(t, first.ID, history[1].ID)
	})
}

func TestRequestRepository_Aggregates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, "acct-1", nil, 1000000)
	require.NoError(t, err)

	deposit1 := testutil.CreateTestDepositRequest("acct-1", 10000)
	require.NoError(t, repo.Create(ctx, deposit1))
	deposit2 := testutil.CreateTestDepositRequest("acct-1", 20000)
	require.NoError(t, repo.Create(ctx, deposit2))
	withdrawal := testutil.CreateTestWithdrawalRequest("acct-1", 50000, 1000)
	require.NoError(t, repo.Create(ctx, withdrawal))

	t.Run("pending aggregates split by kind", func(t *testing.T) {
		deposits, err := repo.AggregatePending(ctx, models.RequestKindDeposit)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deposits.Count)
		assert.Equal(t, int64(30000), deposits.Sum)

		withdrawals, err := repo.AggregatePending(ctx, models.RequestKindWithdrawal)
		require.NoError(t, err)
		assert.Equal(t, int64(1), withdrawals.Count)
		assert.Equal(t, int64(50000), withdrawals.Sum)
	})

	decided, err := repo.MarkDecided(ctx, deposit1.ID, models.RequestStatusApproved, "admin-1", "", 500)
	require.NoError(t, err)
	require.True(t, decided)
	decided, err = repo.MarkDecided(ctx, deposit2.ID, models.RequestStatusRejected, "admin-1", "bad proof", 0)
	require.NoError(t, err)
	require.True(t, decided)

	t.Run("decided window counts approvals only", func(t *testing.T) {
		from := time.Now().Add(-time.Hour)
		to := time.Now().Add(time.Hour)

		agg, err := repo.AggregateDecidedBetween(ctx, models.RequestKindDeposit, from, to)
		require.NoError(t, err)
		assert.Equal(t, int64(1), agg.Count)
		assert.Equal(t, int64(10000), agg.Sum)

		// Outside the window
		agg, err = repo.AggregateDecidedBetween(ctx, models.RequestKindDeposit, from.Add(-48*time.Hour), from)
		require.NoError(t, err)
		assert.Zero(t, agg.Count)
	})

	t.Run("decision counts", func(t *testing.T) {
		approved, rejected, err := repo.DecisionCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), approved)
		assert.Equal(t, int64(1), rejected)
	})
}
