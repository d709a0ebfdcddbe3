package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

func newTestClient(buf int) *wsClient {
	return &wsClient{send: make(chan []byte, buf)}
}

func TestHub_PublishSnapshot(t *testing.T) {
	h := NewHub()
	a, b := newTestClient(4), newTestClient(4)
	h.register(a)
	h.register(b)
	if h.Clients() != 2 {
		t.Fatalf("expected 2 clients, got %d", h.Clients())
	}

	snap := &domain.Snapshot{Seq: 7, GeneratedAt: time.Unix(0, 0).UTC()}
	if err := h.PublishSnapshot(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*wsClient{a, b} {
		select {
		case data := <-c.send:
			var ev struct {
				Type string          `json:"type"`
				Data domain.Snapshot `json:"data"`
			}
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type != EventSnapshot || ev.Data.Seq != 7 {
				t.Errorf("unexpected event %+v", ev)
			}
		default:
			t.Fatal("expected a queued snapshot")
		}
	}
}

func TestHub_PublishViewport(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.register(c)

	vp := domain.DefaultViewport()
	vp.Bearing = 45
	if err := h.PublishViewport(context.Background(), vp); err != nil {
		t.Fatal(err)
	}

	var ev struct {
		Type string          `json:"type"`
		Data domain.Viewport `json:"data"`
	}
	if err := json.Unmarshal(<-c.send, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventViewport || ev.Data.Bearing != 45 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestHub_PublishRotation(t *testing.T) {
	h := NewHub()
	a, b := newTestClient(1), newTestClient(1)
	h.register(a)
	h.register(b)

	if err := h.PublishRotation(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*wsClient{a, b} {
		var ev struct {
			Type string           `json:"type"`
			Data rotationResponse `json:"data"`
		}
		if err := json.Unmarshal(<-c.send, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != EventRotation || !ev.Data.Enabled {
			t.Errorf("unexpected event %+v", ev)
		}
	}
}

func TestHub_SlowClientDropsMessages(t *testing.T) {
	h := NewHub()
	slow, fast := newTestClient(1), newTestClient(8)
	h.register(slow)
	h.register(fast)

	for i := 1; i <= 3; i++ {
		if err := h.PublishSnapshot(context.Background(), &domain.Snapshot{Seq: uint64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	if len(slow.send) != 1 {
		t.Errorf("slow client should hold only the first message, has %d", len(slow.send))
	}
	if len(fast.send) != 3 {
		t.Errorf("fast client should hold all messages, has %d", len(fast.send))
	}
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub()
	c := newTestClient(1)
	h.register(c)
	h.unregister(c)

	if h.Clients() != 0 {
		t.Fatalf("expected no clients, got %d", h.Clients())
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}

	// A second unregister and later broadcasts must not panic.
	h.unregister(c)
	if err := h.PublishSnapshot(context.Background(), &domain.Snapshot{Seq: 1}); err != nil {
		t.Fatal(err)
	}
}
