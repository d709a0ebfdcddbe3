package usecases_test

import (
	"testing"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

func TestMetricsView(t *testing.T) {
	ref := testReference()
	b := domain.Batch{
		Unassigned: []domain.RideRequest{{RequestID: "1", TimeRequested: "1700000000", FromPort: "1", ToPort: "2"}},
		Assigned: []domain.RideRequest{
			{RequestID: "2", TimeRequested: "1700000005", FromPort: "2", ToPort: "3", TeamID: "2", State: domain.RequestStateAssigned},
		},
		Drones: []domain.DroneState{
			{DroneID: "7", TeamID: "1", Latitude: 37.5, Longitude: -122.25, Altitude: 30, Passengers: 2, BatteryLeft: 0.75, Fulfilling: "2"},
		},
		Counts: []domain.RequestCount{{FromPortName: "Gates", ToPortName: "Oval", Count: 4}},
	}
	tables := usecases.MetricsView(usecases.Merge(b, ref, domain.DefaultViewport()), ref.Palette)

	titles := []string{
		"Unassigned Requests", "Assigned Requests", "Current Drone Locations",
		"Unassigned Port Request Summary", "Ports", "Teams",
	}
	if len(tables) != len(titles) {
		t.Fatalf("expected %d tables, got %d", len(titles), len(tables))
	}
	for i, title := range titles {
		if tables[i].Title != title {
			t.Errorf("table %d: expected %q, got %q", i, title, tables[i].Title)
		}
		for _, row := range tables[i].Rows {
			if len(row) != len(tables[i].Headers) {
				t.Errorf("%s: row %v does not match headers %v", title, row, tables[i].Headers)
			}
		}
	}

	if got := tables[0].Rows; len(got) != 1 || got[0][0] != "1" || got[0][1] != "1700000000" {
		t.Errorf("unexpected unassigned rows %v", got)
	}
	if got := tables[1].Rows; len(got) != 1 || got[0][4] != "2" {
		t.Errorf("unexpected assigned rows %v", got)
	}
	drone := tables[2].Rows[0]
	if drone[3] != "37.5" || drone[4] != "-122.25" || drone[7] != "2" || drone[8] != "0.75" || drone[9] != "2" {
		t.Errorf("unexpected drone row %v", drone)
	}
	if got := tables[3].Rows[0]; got[0] != "Gates" || got[2] != "4" {
		t.Errorf("unexpected summary row %v", got)
	}
	if len(tables[4].Rows) != 3 {
		t.Errorf("expected 3 ports, got %d", len(tables[4].Rows))
	}
	if got := tables[5].Rows; len(got) != 2 || got[1][1] != "[0, 255, 0]" {
		t.Errorf("unexpected team rows %v", got)
	}
}

func TestMetricsView_Empty(t *testing.T) {
	tables := usecases.MetricsView(&domain.Snapshot{}, nil)
	if len(tables) != 6 {
		t.Fatalf("expected 6 tables, got %d", len(tables))
	}
	for _, tbl := range tables {
		if len(tbl.Rows) != 0 {
			t.Errorf("%s: expected no rows, got %d", tbl.Title, len(tbl.Rows))
		}
	}
}
