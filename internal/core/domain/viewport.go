package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidViewport is returned when a viewport change is out of range.
var ErrInvalidViewport = errors.New("invalid viewport")

// Limits enforced on user supplied camera changes.
const (
	MaxPitch = 60.0

	// ReferenceZoom is the zoom level at which icons are drawn at their base size.
	ReferenceZoom = 16.5
)

// Viewport holds the map camera parameters.
type Viewport struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Zoom      float64 `json:"zoom"`
	MinZoom   float64 `json:"minZoom"`
	MaxZoom   float64 `json:"maxZoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	MapStyle  string  `json:"mapStyle"`
}

// DefaultViewport is centred on the test field at satellite zoom.
func DefaultViewport() Viewport {
	return Viewport{
		Longitude: -122.176128,
		Latitude:  37.42240,
		Zoom:      16.5,
		MinZoom:   15.5,
		MaxZoom:   18,
		Pitch:     0,
		Bearing:   0,
		Width:     500,
		Height:    500,
		MapStyle:  "mapbox://styles/mapbox/satellite-v9",
	}
}

// ViewportPatch is a partial camera update. Nil fields are left unchanged.
type ViewportPatch struct {
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Zoom      *float64 `json:"zoom,omitempty"`
	Pitch     *float64 `json:"pitch,omitempty"`
	Bearing   *float64 `json:"bearing,omitempty"`
	Width     *int     `json:"width,omitempty"`
	Height    *int     `json:"height,omitempty"`
}

// Apply returns v with the patch applied, or ErrInvalidViewport if any field
// is out of range. v itself is never modified.
func (v Viewport) Apply(p ViewportPatch) (Viewport, error) {
	if p.Longitude != nil {
		if *p.Longitude < -180 || *p.Longitude > 180 {
			return v, fmt.Errorf("%w: longitude %v out of [-180,180]", ErrInvalidViewport, *p.Longitude)
		}
		v.Longitude = *p.Longitude
	}
	if p.Latitude != nil {
		if *p.Latitude < -90 || *p.Latitude > 90 {
			return v, fmt.Errorf("%w: latitude %v out of [-90,90]", ErrInvalidViewport, *p.Latitude)
		}
		v.Latitude = *p.Latitude
	}
	if p.Zoom != nil {
		if *p.Zoom < v.MinZoom || *p.Zoom > v.MaxZoom {
			return v, fmt.Errorf("%w: zoom %v out of [%v,%v]", ErrInvalidViewport, *p.Zoom, v.MinZoom, v.MaxZoom)
		}
		v.Zoom = *p.Zoom
	}
	if p.Pitch != nil {
		if *p.Pitch < 0 || *p.Pitch > MaxPitch {
			return v, fmt.Errorf("%w: pitch %v out of [0,%v]", ErrInvalidViewport, *p.Pitch, MaxPitch)
		}
		v.Pitch = *p.Pitch
	}
	if p.Bearing != nil {
		if *p.Bearing < 0 || *p.Bearing >= 360 {
			return v, fmt.Errorf("%w: bearing %v out of [0,360)", ErrInvalidViewport, *p.Bearing)
		}
		v.Bearing = *p.Bearing
	}
	if p.Width != nil {
		if *p.Width <= 0 {
			return v, fmt.Errorf("%w: width must be positive", ErrInvalidViewport)
		}
		v.Width = *p.Width
	}
	if p.Height != nil {
		if *p.Height <= 0 {
			return v, fmt.Errorf("%w: height must be positive", ErrInvalidViewport)
		}
		v.Height = *p.Height
	}
	return v, nil
}

// Rotate advances the bearing by increment degrees, wrapping at 360.
func (v Viewport) Rotate(increment float64) Viewport {
	v.Bearing = math.Mod(v.Bearing+increment, 360)
	if v.Bearing < 0 {
		v.Bearing += 360
	}
	return v
}

// IconScale is the size multiplier for map icons at the current zoom.
func (v Viewport) IconScale() float64 {
	return math.Pow(v.Zoom/ReferenceZoom, 10)
}
