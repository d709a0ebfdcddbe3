package natsadapter

import (
	"strings"
	"testing"
	"time"
)

func TestSnapshotMsgID_DiffersAcrossRestarts(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := processOrigin(start)
	restarted := processOrigin(start.Add(30 * time.Second))

	if first == restarted {
		t.Fatalf("origins should differ across restarts, both %q", first)
	}
	if snapshotMsgID(first, 1) == snapshotMsgID(restarted, 1) {
		t.Error("seq 1 of a restarted process must not reuse the previous message id")
	}
}

func TestSnapshotMsgID_UniqueWithinProcess(t *testing.T) {
	origin := processOrigin(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	seen := make(map[string]bool)
	for seq := uint64(1); seq <= 100; seq++ {
		id := snapshotMsgID(origin, seq)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, origin+"-") {
			t.Errorf("id %q should start with origin %q", id, origin)
		}
	}
}
