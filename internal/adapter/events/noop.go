package events

import (
	"context"
	"log/slog"

	"github.com/workledger/workledger-backend/internal/domain"
)

// NoopPublisher drops events. Used when no broker is configured or reachable at startup.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that only logs at debug level
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	p.logger.DebugContext(ctx, "event publish skipped", "event", event.Type, "aggregate_id", event.AggregateID)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
