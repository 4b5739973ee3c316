// Package worker contains the background consumer that turns transaction
// events into persisted notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/alerts"
	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Notifier re-evaluates a user's alert feed whenever one of their
// transactions changes and persists the alerts worth surfacing. The dedup
// key makes redelivered or repeated events idempotent: one notification per
// budget (or goal) per period per level.
type Notifier struct {
	alertService  *services.AlertService
	notifications store.NotificationStore
}

func NewNotifier(alertService *services.AlertService, notifications store.NotificationStore) *Notifier {
	return &Notifier{alertService: alertService, notifications: notifications}
}

// HandleTransactionEvent evaluates alerts for the event's period and writes
// notifications. Returning an error requeues the event.
func (n *Notifier) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	feed, err := n.alertService.Feed(ctx, msg.UserID, msg.Month, msg.Year)
	if err != nil {
		return fmt.Errorf("evaluate alert feed: %w", err)
	}

	written := 0
	for _, a := range feed.Budgets {
		// Info-free by construction: budget alerts are warning or danger.
		key := fmt.Sprintf("budget:%d:%d-%02d:%s", a.ID, a.Year, a.Month, a.Level)
		ok, err := n.insert(ctx, msg.UserID, string(a.Source), string(a.Level), a.Message, key)
		if err != nil {
			return err
		}
		if ok {
			written++
		}
	}
	for _, a := range feed.Goals {
		if a.Level == alerts.LevelInfo {
			// Progress encouragement stays in the live feed only.
			continue
		}
		key := fmt.Sprintf("goal:%d:%s", a.ID, a.Level)
		ok, err := n.insert(ctx, msg.UserID, string(a.Source), string(a.Level), a.Message, key)
		if err != nil {
			return err
		}
		if ok {
			written++
		}
	}

	if written > 0 {
		slog.InfoContext(ctx, "persisted alert notifications",
			"user_id", msg.UserID, "count", written,
			"month", msg.Month, "year", msg.Year)
	}
	return nil
}

func (n *Notifier) insert(ctx context.Context, userID int64, source, level, message, dedupKey string) (bool, error) {
	notification := &core.Notification{
		UserID:  userID,
		Source:  source,
		Level:   level,
		Message: message,
	}
	ok, err := n.notifications.InsertNotification(ctx, notification, dedupKey)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return ok, nil
}
