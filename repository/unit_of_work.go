package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/events"
	"cashier/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	accountRepo      service.AccountRepository
	requestRepo      service.RequestRepository
	ledgerRepo       service.LedgerRepository
	gameRoundRepo    service.GameRoundRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.requestRepo = newRequestRepositoryWithTx(tx)
	u.ledgerRepo = newLedgerRepositoryWithTx(tx)
	u.gameRoundRepo = newGameRoundRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes staged events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards staged events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// RequestRepository returns the transfer request repository for this unit of work
func (u *unitOfWork) RequestRepository() service.RequestRepository {
	if u.requestRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.requestRepo
}

// LedgerRepository returns the ledger entry repository for this unit of work
func (u *unitOfWork) LedgerRepository() service.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

// GameRoundRepository returns the game round repository for this unit of work
func (u *unitOfWork) GameRoundRepository() service.GameRoundRepository {
	if u.gameRoundRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRoundRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
