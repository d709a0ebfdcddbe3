package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

const recorderDurable = "track-recorder"

// Subscriber implements ports.SnapshotSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and ensures the dashboard stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url, "vertiwatch-recorder")
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSnapshots delivers new snapshots to handler through a durable
// consumer. Undecodable messages are terminated; handler errors are retried
// up to three deliveries.
func (s *Subscriber) SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, snap *domain.Snapshot) error) error {
	sub, err := s.js.Subscribe(SubjectSnapshot, func(msg *nats.Msg) {
		var snap domain.Snapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			slog.Warn("drop undecodable snapshot", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &snap); err != nil {
			slog.Warn("snapshot handler failed", "seq", snap.Seq, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(recorderDurable),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.AckWait(10*time.Second),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectSnapshot, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Conn exposes the underlying connection for health checks.
func (s *Subscriber) Conn() *nats.Conn {
	return s.conn
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
