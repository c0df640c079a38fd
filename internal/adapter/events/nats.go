package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/workledger/workledger-backend/internal/domain"
)

// NATSPublisher publishes ledger events on "<prefix>.<event type>" subjects
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("workledger"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.Timeout(5 * time.Second),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Subject returns the subject an event is published on
func Subject(prefix string, eventType domain.EventType) string {
	return prefix + "." + string(eventType)
}

func (p *NATSPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := nats.NewMsg(Subject(p.prefix, event.Type))
	msg.Header.Set(nats.MsgIdHdr, event.ID.String())
	msg.Data = payload

	return p.conn.PublishMsg(msg)
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
