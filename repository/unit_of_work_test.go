package repository

import (
	"context"
	"testing"
	"time"

	"cashier/events"
	"cashier/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)

	uow.EventBus().Publish(events.AccountCreatedEvent{AccountID: "acct-1", InitialBalance: 5000})

	// Nothing is emitted before commit
	select {
	case <-received:
		t.Fatal("event emitted before commit")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, uow.Commit())

	select {
	case e := <-received:
		created, ok := e.(events.AccountCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "acct-1", created.AccountID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not emitted after commit")
	}

	// The row is visible outside the transaction
	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "acct-1")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, int64(5000), account.Balance)
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)
	uow.EventBus().Publish(events.AccountCreatedEvent{AccountID: "acct-1", InitialBalance: 5000})

	require.NoError(t, uow.Rollback())

	// No row, no event
	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Nil(t, account)

	select {
	case <-received:
		t.Fatal("event emitted after rollback")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnitOfWork_RollbackAfterCommitIsNoop(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().Create(ctx, "acct-1", nil, 5000)
	require.NoError(t, err)

	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback()) // the deferred rollback pattern

	account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "acct-1")
	require.NoError(t, err)
	require.NotNil(t, account)
}

func TestUnitOfWork_DoubleBegin(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}
