package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// EventPublisher pushes transaction events toward the alert worker.
// *amqp.Client satisfies it; tests substitute a fake.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error
}

// TransactionService orchestrates transaction writes: persist first, then
// publish the change event. Publishing is best-effort; a broker failure
// never fails the request, the write already landed.
type TransactionService struct {
	store  store.TransactionStore
	events EventPublisher
}

func NewTransactionService(st store.TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{store: st, events: events}
}

// Create validates and stores a transaction, then publishes a created event.
func (s *TransactionService) Create(ctx context.Context, t *core.Transaction) error {
	if !t.IsRecurring && t.RecurringFrequency == "" {
		t.RecurringFrequency = core.Never
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, t, amqp.ActionCreated)
	return nil
}

// Get returns one transaction owned by the user.
func (s *TransactionService) Get(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, userID)
}

// Update replaces a transaction's fields after validation.
func (s *TransactionService) Update(ctx context.Context, t *core.Transaction) error {
	if !t.IsRecurring && t.RecurringFrequency == "" {
		t.RecurringFrequency = core.Never
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	s.publish(ctx, t, amqp.ActionUpdated)
	return nil
}

// Delete removes a transaction and publishes a deleted event carrying the
// period the transaction was in, so the worker re-evaluates that month.
func (s *TransactionService) Delete(ctx context.Context, id, userID int64) error {
	t, err := s.store.GetTransaction(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}

	s.publish(ctx, t, amqp.ActionDeleted)
	return nil
}

// List returns a filtered, paginated page plus the total match count.
func (s *TransactionService) List(ctx context.Context, userID int64, f store.TransactionFilter) ([]core.Transaction, int, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, 0, core.Invalid("type", "must be income or expense")
	}
	return s.store.ListTransactions(ctx, userID, f)
}

func (s *TransactionService) publish(ctx context.Context, t *core.Transaction, action string) {
	if s.events == nil {
		return
	}
	msg := amqp.NewTransactionEventMessage(t.UserID, t.ID, action,
		int(t.Date.Month()), t.Date.Year())
	if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish transaction event",
			"transaction_id", t.ID, "action", action, "error", err)
	}
}
