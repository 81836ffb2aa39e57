package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeInterventionChanges delivers every change to this process.
// The consumer is ephemeral so each replica sees all messages.
func (s *Subscriber) SubscribeInterventionChanges(ctx context.Context, handler func(ctx context.Context, id string) error) error {
	sub, err := s.js.Subscribe(SubjectInterventions+">", func(msg *nats.Msg) {
		if err := handler(ctx, changedID(msg)); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// changedID reads the ID from the payload, falling back to the subject suffix.
func changedID(msg *nats.Msg) string {
	var ev InterventionChanged
	if err := json.Unmarshal(msg.Data, &ev); err == nil && ev.ID != "" {
		return ev.ID
	}
	return strings.TrimPrefix(msg.Subject, SubjectInterventions)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
