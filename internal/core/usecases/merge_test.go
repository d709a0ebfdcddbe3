package usecases_test

import (
	"testing"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

func testReference() *usecases.Reference {
	teams := []domain.Team{{ID: "1"}, {ID: "2"}}
	return &usecases.Reference{
		Teams:   teams,
		Palette: domain.NewPalette(teams, nil),
		Vertiports: []domain.Vertiport{
			{PortID: "1", PortName: "Gates", Latitude: 37.4300, Longitude: -122.1730},
			{PortID: "2", PortName: "Oval", Latitude: 37.4290, Longitude: -122.1690},
			{PortID: "3", PortName: "Dish", Latitude: 37.4080, Longitude: -122.1790},
		},
	}
}

func TestMerge_Colors(t *testing.T) {
	b := domain.Batch{
		Unassigned: []domain.RideRequest{{RequestID: "1"}},
		Assigned: []domain.RideRequest{
			{RequestID: "2", TeamID: "2", State: domain.RequestStateAssigned},
			{RequestID: "3", TeamID: "99", State: domain.RequestStateAssigned},
		},
		Drones: []domain.DroneState{
			{DroneID: "a", TeamID: "1", IsPhysical: true},
			{DroneID: "b", TeamID: "2"},
			{DroneID: "c", TeamID: "99"},
		},
	}
	snap := usecases.Merge(b, testReference(), domain.DefaultViewport())

	wantReq := []domain.RGB{domain.Black, {0, 255, 0}, domain.Black}
	for i, r := range snap.Requests {
		if r.Color != wantReq[i] {
			t.Errorf("request %s: expected %v, got %v", r.RequestID, wantReq[i], r.Color)
		}
	}

	wantDrone := []struct {
		color domain.RGB
		icon  string
	}{
		{domain.RGB{255, 0, 0}, domain.IconDrone},
		{domain.RGB{0, 255, 0}, domain.IconVirtualDrone},
		{domain.Black, domain.IconVirtualDrone},
	}
	for i, d := range snap.Drones {
		if d.Color != wantDrone[i].color || d.Icon != wantDrone[i].icon {
			t.Errorf("drone %s: expected %v/%s, got %v/%s", d.DroneID, wantDrone[i].color, wantDrone[i].icon, d.Color, d.Icon)
		}
		if d.Size != domain.DroneIconSize {
			t.Errorf("drone %s: expected size %d, got %d", d.DroneID, domain.DroneIconSize, d.Size)
		}
	}
}

func TestMerge_WaitingHeat(t *testing.T) {
	b := domain.Batch{
		Counts: []domain.RequestCount{
			{FromPort: "1", ToPort: "2", Count: 1},
			{FromPort: "1", ToPort: "3", Count: 4},
			{FromPort: "1", ToPort: "4", Count: 7},
			{FromPort: "2", ToPort: "1", Count: 2},
		},
	}
	snap := usecases.Merge(b, testReference(), domain.DefaultViewport())

	want := []struct {
		waiting int
		color   domain.RGB
	}{
		{7, domain.RGB{255, 0, 0}},
		{2, domain.RGB{204, 255, 0}},
		{0, domain.RGB{0, 255, 0}},
	}
	for i, p := range snap.Vertiports {
		if p.Waiting != want[i].waiting || p.Color != want[i].color {
			t.Errorf("port %s: expected %d/%v, got %d/%v", p.PortName, want[i].waiting, want[i].color, p.Waiting, p.Color)
		}
		if p.Icon != domain.IconVertiport || p.Size != domain.VertiportIconSize {
			t.Errorf("port %s: unexpected icon %s/%d", p.PortName, p.Icon, p.Size)
		}
	}
}

func TestMerge_Bounds(t *testing.T) {
	b := domain.Batch{
		Drones: []domain.DroneState{{DroneID: "a", Latitude: 37.5, Longitude: -122.0}},
	}
	snap := usecases.Merge(b, testReference(), domain.DefaultViewport())
	if snap.Bounds == nil {
		t.Fatal("expected bounds")
	}
	want := domain.Bounds{MinLat: 37.4080, MinLon: -122.1790, MaxLat: 37.5, MaxLon: -122.0}
	if *snap.Bounds != want {
		t.Errorf("expected %+v, got %+v", want, *snap.Bounds)
	}

	empty := usecases.Merge(domain.Batch{}, &usecases.Reference{}, domain.DefaultViewport())
	if empty.Bounds != nil {
		t.Errorf("expected nil bounds without points, got %+v", *empty.Bounds)
	}
}

func TestMerge_NilReference(t *testing.T) {
	b := domain.Batch{
		Drones: []domain.DroneState{{DroneID: "a", TeamID: "1"}},
	}
	snap := usecases.Merge(b, nil, domain.DefaultViewport())
	if snap.Drones[0].Color != domain.Black {
		t.Errorf("expected black without a palette, got %v", snap.Drones[0].Color)
	}
	if snap.Vertiports == nil || len(snap.Vertiports) != 0 {
		t.Errorf("expected empty vertiports, got %v", snap.Vertiports)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	ref := testReference()
	b := domain.Batch{
		Drones: []domain.DroneState{{DroneID: "a", Latitude: 1}},
		Counts: []domain.RequestCount{{FromPort: "1", Count: 1}},
	}
	snap := usecases.Merge(b, ref, domain.DefaultViewport())

	b.Drones[0].Latitude = 2
	b.Counts[0].Count = 9
	ref.Vertiports[0].PortName = "changed"

	if snap.Drones[0].Latitude != 1 || snap.Counts[0].Count != 1 || snap.Vertiports[0].PortName != "Gates" {
		t.Error("snapshot must not share memory with its inputs")
	}
	if ref.Vertiports[1].Icon != "" {
		t.Error("merge must not decorate the reference ports")
	}
}

func TestMerge_ViewportAndIconScale(t *testing.T) {
	vp := domain.DefaultViewport()
	vp.Zoom = 18
	snap := usecases.Merge(domain.Batch{}, testReference(), vp)
	if snap.Viewport != vp {
		t.Errorf("expected viewport %+v, got %+v", vp, snap.Viewport)
	}
	if snap.IconScale <= 1 {
		t.Errorf("zooming in should enlarge icons, got scale %v", snap.IconScale)
	}
}

func TestWaitingByPort(t *testing.T) {
	got := usecases.WaitingByPort([]domain.RequestCount{
		{FromPort: "1", ToPort: "2", Count: 1},
		{FromPort: "2", ToPort: "1", Count: 1},
		{FromPort: "1", ToPort: "3", Count: 4},
		{FromPort: "1", ToPort: "4", Count: 2},
	})
	if got["1"] != 2 || got["2"] != 1 || len(got) != 2 {
		t.Errorf("expected last row per port to win, got %v", got)
	}
}
