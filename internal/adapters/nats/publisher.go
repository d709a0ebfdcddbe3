package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// Subjects and stream carrying dashboard state between processes.
const (
	StreamDashboard = "DASHBOARD"
	SubjectSnapshot = "vertiwatch.snapshot"
	SubjectViewport = "vertiwatch.viewport"
	SubjectRotation = "vertiwatch.rotation"
)

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// Publisher implements ports.SnapshotPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	// origin prefixes message ids. Sequence numbers restart with every
	// process, so the bare seq would collide inside the dedupe window.
	origin string
}

// NewPublisher connects to NATS and ensures the dashboard stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url, "vertiwatch-dashboard")
	if err != nil {
		return nil, err
	}

	// Snapshots are produced at frame rate; do not let a slow server stall
	// the loop.
	js, err := conn.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js, origin: processOrigin(time.Now())}, nil
}

// processOrigin identifies this publisher instance by host and start time.
func processOrigin(start time.Time) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "dashboard"
	}
	return host + "-" + strconv.FormatInt(start.UnixNano(), 36)
}

func snapshotMsgID(origin string, seq uint64) string {
	return origin + "-" + strconv.FormatUint(seq, 10)
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:              StreamDashboard,
		Subjects:          []string{"vertiwatch.>"},
		Retention:         nats.LimitsPolicy,
		MaxAge:            10 * time.Minute,
		MaxMsgsPerSubject: 10000,
		Discard:           nats.DiscardOld,
		Storage:           nats.MemoryStorage,
		Duplicates:        time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishSnapshot enqueues the snapshot without waiting for the ack. The
// message id is the process origin plus the sequence number.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = p.js.PublishAsync(SubjectSnapshot, data, nats.MsgId(snapshotMsgID(p.origin, snap.Seq)))
	if err != nil {
		return fmt.Errorf("publish snapshot %d: %w", snap.Seq, err)
	}
	return nil
}

func (p *Publisher) PublishViewport(ctx context.Context, vp domain.Viewport) error {
	data, err := json.Marshal(vp)
	if err != nil {
		return fmt.Errorf("marshal viewport: %w", err)
	}
	if _, err := p.js.PublishAsync(SubjectViewport, data); err != nil {
		return fmt.Errorf("publish viewport: %w", err)
	}
	return nil
}

func (p *Publisher) PublishRotation(ctx context.Context, enabled bool) error {
	data, err := json.Marshal(struct {
		Enabled bool `json:"enabled"`
	}{enabled})
	if err != nil {
		return fmt.Errorf("marshal rotation: %w", err)
	}
	if _, err := p.js.PublishAsync(SubjectRotation, data); err != nil {
		return fmt.Errorf("publish rotation: %w", err)
	}
	return nil
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close waits briefly for outstanding acks, then drains the connection.
func (p *Publisher) Close() {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
	}
	_ = p.conn.Drain()
}
