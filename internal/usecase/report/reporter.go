package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Summary describes the pending checkout requests found by one run
type Summary struct {
	Cutoff time.Time
	Count  int
	Total  decimal.Decimal
	Oldest *domain.CheckoutRequest
}

// Reporter lists checkout requests that have waited for a decision longer than StaleAfter
type Reporter struct {
	CheckoutRepo domain.CheckoutRepository
	StaleAfter   time.Duration
	Logger       *slog.Logger

	now func() time.Time
}

// NewReporter creates a new Reporter instance
func NewReporter(checkoutRepo domain.CheckoutRepository, staleAfter time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{
		CheckoutRepo: checkoutRepo,
		StaleAfter:   staleAfter,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run reads the stale pending requests and logs a summary. It never mutates the ledger.
func (r *Reporter) Run(ctx context.Context) (*Summary, error) {
	cutoff := r.now().Add(-r.StaleAfter)

	requests, err := r.CheckoutRepo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending checkout requests: %w", err)
	}

	summary := &Summary{Cutoff: cutoff, Count: len(requests), Total: decimal.Zero}
	for _, req := range requests {
		summary.Total = summary.Total.Add(req.Amount)
		if summary.Oldest == nil || req.CreatedAt.Before(summary.Oldest.CreatedAt) {
			summary.Oldest = req
		}
	}

	if summary.Count == 0 {
		r.Logger.DebugContext(ctx, "no stale checkout requests", "cutoff", cutoff)
		return summary, nil
	}

	r.Logger.WarnContext(ctx, "stale checkout requests awaiting decision",
		"count", summary.Count,
		"total", summary.Total.StringFixed(domain.MoneyScale),
		"oldest_id", summary.Oldest.ID,
		"oldest_created_at", summary.Oldest.CreatedAt,
	)
	return summary, nil
}
