package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// RecurringProcessor materializes due occurrences from recurring
// transaction templates. Each run checks every template against its
// frequency strategy and creates at most one occurrence per template.
type RecurringProcessor struct {
	store        store.TransactionStore
	transactions *TransactionService
}

func NewRecurringProcessor(st store.TransactionStore, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{store: st, transactions: transactions}
}

// ProcessDue creates occurrences for every template that is due at now and
// returns how many were created. Failures on one template never stop the
// rest.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurringTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	slog.InfoContext(ctx, "processing recurring transactions",
		"total_templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tmpl := range templates {
		checker, err := GetDuenessChecker(tmpl.RecurringFrequency)
		if err != nil {
			slog.ErrorContext(ctx, "skipping template with bad frequency",
				"template_id", tmpl.ID, "frequency", tmpl.RecurringFrequency)
			continue
		}
		if !checker.IsDue(tmpl.LastApplied.Time, now, tmpl.Date) {
			continue
		}

		occurrence := core.Transaction{
			UserID:             tmpl.UserID,
			Amount:             tmpl.Amount,
			Type:               tmpl.Type,
			Category:           tmpl.Category,
			Date:               core.NewDate(now.Year(), int(now.Month()), now.Day()),
			Note:               tmpl.Note,
			RecurringFrequency: core.Never,
		}
		if err := p.transactions.Create(ctx, &occurrence); err != nil {
			slog.ErrorContext(ctx, "failed to create occurrence from template",
				"template_id", tmpl.ID, "category", tmpl.Category, "error", err)
			continue
		}

		if err := p.store.SetLastApplied(ctx, tmpl.ID, occurrence.Date); err != nil {
			// The occurrence exists; a stale marker only risks a duplicate
			// on the next run.
			slog.ErrorContext(ctx, "failed to update last applied date",
				"template_id", tmpl.ID, "error", err)
		}

		processed++
		slog.InfoContext(ctx, "created occurrence from recurring template",
			"template_id", tmpl.ID,
			"transaction_id", occurrence.ID,
			"amount_cents", occurrence.Amount.Cents,
			"frequency", tmpl.RecurringFrequency)
	}

	slog.InfoContext(ctx, "recurring processing complete",
		"processed", processed, "total_checked", len(templates))

	return processed, nil
}

// Run processes due templates on a fixed interval until the context ends.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One pass at startup so a restart never delays due templates.
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "recurring pass failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "recurring pass failed", "error", err)
			}
		}
	}
}
