package repository

import (
	"context"
	"testing"

	"cashier/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		account, err := repo.GetByID(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create with welcome balance", func(t *testing.T) {
		account, err := repo.Create(ctx, "acct-1", nil, 5000)
		require.NoError(t, err)

		assert.Equal(t, "acct-1", account.ID)
		assert.Equal(t, int64(5000), account.Balance)
		assert.Nil(t, account.ReferredBy)
		assert.False(t, account.CreatedAt.IsZero())

		fetched, err := repo.GetByID(ctx, "acct-1")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, int64(5000), fetched.Balance)
	})

	t.Run("create with referrer", func(t *testing.T) {
		referrer := "acct-1"
		account, err := repo.Create(ctx, "acct-2", &referrer, 5000)
		require.NoError(t, err)
		require.NotNil(t, account.ReferredBy)
		assert.Equal(t, "acct-1", *account.ReferredBy)
	})

	t.Run("referrer must exist", func(t *testing.T) {
		ghost := "acct-ghost"
		_, err := repo.Create(ctx, "acct-3", &ghost, 5000)
		assert.Error(t, err) // foreign key violation
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := repo.Create(ctx, "acct-1", nil, 5000)
		assert.Error(t, err)
	})
}

func TestAccountRepository_UpdateBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)

	t.Run("sets new balance", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "acct-1", 12000)
		require.NoError(t, err)

		account, err := repo.GetByID(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, int64(12000), account.Balance)
	})

	t.Run("negative balance violates check constraint", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "acct-1", -1)
		assert.Error(t, err)
	})

	t.Run("missing account", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "ghost", 100)
		assert.Error(t, err)
	})
}

func TestAccountRepository_RecordGameOutcome_Streaks(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acct-1", nil, 100000)
	require.NoError(t, err)

	streak := func() int {
		account, err := repo.GetByID(ctx, "acct-1")
		require.NoError(t, err)
		return account.CurrentStreak
	}

	// Two losses build a negative streak
	require.NoError(t, repo.RecordGameOutcome(ctx, "acct-1", false, 1000, 0))
	require.NoError(t, repo.RecordGameOutcome(ctx, "acct-1", false, 1000, 0))
	assert.Equal(t, -2, streak())

	// A win resets to +1
	require.NoError(t, repo.RecordGameOutcome(ctx, "acct-1", true, 1000, 1000))
	assert.Equal(t, 1, streak())

	// Another win extends it
	require.NoError(t, repo.RecordGameOutcome(ctx, "acct-1", true, 1000, 2000))
	assert.Equal(t, 2, streak())

	account, err := repo.GetByID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 4, account.GamesPlayed)
	assert.Equal(t, int64(3000), account.TotalWon)
	assert.Equal(t, int64(2000), account.TotalLost)
}

func TestAccountRepository_Accumulators(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "acct-ref", nil, 5000)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)

	require.NoError(t, repo.AddDeposited(ctx, "acct-1", 10000))
	require.NoError(t, repo.AddDeposited(ctx, "acct-1", 20000))
	require.NoError(t, repo.AddWithdrawn(ctx, "acct-1", 5000))
	require.NoError(t, repo.AddReferralEarnings(ctx, "acct-ref", 500))
	require.NoError(t, repo.AddReferralEarnings(ctx, "acct-ref", 1500))

	account, err := repo.GetByID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), account.TotalDeposited)
	assert.Equal(t, int64(5000), account.TotalWithdrawn)

	referrer, err := repo.GetByID(ctx, "acct-ref")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), referrer.ReferralEarnings)
	assert.Equal(t, 2, referrer.ReferralCount)

	t.Run("negative amount rejected", func(t *testing.T) {
		assert.Error(t, repo.AddDeposited(ctx, "acct-1", -1))
	})
}

func TestAccountRepository_Aggregate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		accounts, balance, deposited, withdrawn, err := repo.Aggregate(ctx)
		require.NoError(t, err)
		assert.Zero(t, accounts)
		assert.Zero(t, balance)
		assert.Zero(t, deposited)
		assert.Zero(t, withdrawn)
	})

	_, err := repo.Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "acct-2", nil, 7000)
	require.NoError(t, err)
	require.NoError(t, repo.AddDeposited(ctx, "acct-1", 10000))

	accounts, balance, deposited, _, err := repo.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), accounts)
	assert.Equal(t, int64(12000), balance)
	assert.Equal(t, int64(10000), deposited)
}
