package events

import (
	"context"
	"sync"

	"cashier/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeRequestDecided EventType = "request_decided"
	EventTypeReferralBonus  EventType = "referral_bonus"
	EventTypeGameRound      EventType = "game_round"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	AccountID    string
	OldBalance   int64
	NewBalance   int64
	EntryType    models.EntryType
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account provisioned on first login
type AccountCreatedEvent struct {
	AccountID      string
	ReferredBy     *string
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// RequestDecidedEvent represents a deposit/withdrawal request reaching a
// terminal state
type RequestDecidedEvent struct {
	RequestID string
	AccountID string
	Kind      models.RequestKind
	Status    models.RequestStatus
	Amount    int64
	DecidedBy string
}

func (e RequestDecidedEvent) Type() EventType {
	return EventTypeRequestDecided
}

// ReferralBonusEvent represents a referral bonus credited to a referrer
type ReferralBonusEvent struct {
	ReferrerID  string
	ReferredID  string
	BonusAmount int64
	RequestID   string
}

func (e ReferralBonusEvent) Type() EventType {
	return EventTypeReferralBonus
}

// GameRoundEvent represents a settled game round
type GameRoundEvent struct {
	AccountID string
	GameID    string
	BetAmount int64
	WinAmount int64
	Won       bool
}

func (e GameRoundEvent) Type() EventType {
	return EventTypeGameRound
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stages events alongside a unit of work and flushes them
// to the underlying bus only after the database transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all staged events; called after a successful commit.
// Events are emitted on a background context so handlers outlive the
// transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops staged events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
