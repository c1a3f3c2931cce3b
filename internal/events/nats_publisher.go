package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher relays trigger events to a NATS subject so an external
// alerting channel (SMS gateway, mobile push relay) can pick them up.
type NATSPublisher struct {
	conn       *nats.Conn
	subject    string
	maxRetries int
}

func NewNATSPublisher(conn *nats.Conn, subject string, maxRetries int) *NATSPublisher {
	return &NATSPublisher{
		conn:       conn,
		subject:    subject,
		maxRetries: maxRetries,
	}
}

func (p *NATSPublisher) Publish(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	for i := 0; i <= p.maxRetries; i++ {
		err = p.conn.Publish(p.subject, data)
		if err == nil {
			return nil
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}

	return fmt.Errorf("publish failed after %d retries: %w", p.maxRetries, err)
}

// FanoutSink appends to the primary sink and relays a copy to NATS.
// The relay is best effort: a publish failure never fails the append.
type FanoutSink struct {
	Primary Sink
	Relay   *NATSPublisher
}

func (f *FanoutSink) Append(ctx context.Context, evt Event) error {
	if err := f.Primary.Append(ctx, evt); err != nil {
		return err
	}
	if f.Relay != nil {
		if err := f.Relay.Publish(evt); err != nil {
			log.Printf("[WARN] Events: NATS relay failed for %s: %v", evt.ID, err)
		}
	}
	return nil
}

func (f *FanoutSink) List(ctx context.Context, limit int) ([]Event, error) {
	return f.Primary.List(ctx, limit)
}
