package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestViewport_Apply(t *testing.T) {
	base := domain.DefaultViewport()
	got, err := base.Apply(domain.ViewportPatch{
		Longitude: ptr(-122.17),
		Zoom:      ptr(17.25),
		Bearing:   ptr(90.0),
		Width:     ptr(1024),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Longitude != -122.17 || got.Zoom != 17.25 || got.Bearing != 90 || got.Width != 1024 {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Latitude != base.Latitude || got.Height != base.Height || got.MapStyle != base.MapStyle {
		t.Error("unpatched fields must be kept")
	}
	if base != domain.DefaultViewport() {
		t.Error("Apply must not modify the receiver")
	}
}

func TestViewport_ApplyRejectsOutOfRange(t *testing.T) {
	cases := map[string]domain.ViewportPatch{
		"longitude":     {Longitude: ptr(181.0)},
		"latitude":      {Latitude: ptr(-91.0)},
		"zoom low":      {Zoom: ptr(15.0)},
		"zoom high":     {Zoom: ptr(18.5)},
		"pitch":         {Pitch: ptr(60.5)},
		"negative tilt": {Pitch: ptr(-1.0)},
		"bearing":       {Bearing: ptr(360.0)},
		"width":         {Width: ptr(0)},
		"height":        {Height: ptr(-10)},
	}
	for name, patch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := domain.DefaultViewport().Apply(patch)
			if !errors.Is(err, domain.ErrInvalidViewport) {
				t.Errorf("expected ErrInvalidViewport, got %v", err)
			}
		})
	}
}

func TestViewport_ApplyBoundaries(t *testing.T) {
	vp := domain.DefaultViewport()
	for _, patch := range []domain.ViewportPatch{
		{Pitch: ptr(domain.MaxPitch)},
		{Zoom: ptr(vp.MinZoom)},
		{Zoom: ptr(vp.MaxZoom)},
		{Bearing: ptr(0.0)},
		{Bearing: ptr(359.9)},
	} {
		if _, err := vp.Apply(patch); err != nil {
			t.Errorf("unexpected error for %+v: %v", patch, err)
		}
	}
}

func TestViewport_Rotate(t *testing.T) {
	cases := []struct {
		bearing, inc, want float64
	}{
		{0, 0.1, 0.1},
		{350, 20, 10},
		{359.95, 0.1, 0.05},
		{10, -20, 350},
	}
	for _, tc := range cases {
		vp := domain.DefaultViewport()
		vp.Bearing = tc.bearing
		got := vp.Rotate(tc.inc).Bearing
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Rotate(%v) from %v = %v, want %v", tc.inc, tc.bearing, got, tc.want)
		}
	}
}

func TestViewport_IconScale(t *testing.T) {
	vp := domain.DefaultViewport()
	if vp.IconScale() != 1 {
		t.Errorf("expected scale 1 at reference zoom, got %v", vp.IconScale())
	}
	vp.Zoom = 18
	want := math.Pow(18/16.5, 10)
	if math.Abs(vp.IconScale()-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, vp.IconScale())
	}
}
