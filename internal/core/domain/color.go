package domain

import (
	"math"
	"sort"
)

// RGB is an 8-bit color triple. It encodes as a JSON array, the form the map
// layers consume directly.
type RGB [3]uint8

// Black is used for unassigned requests and for teams missing from the palette.
var Black = RGB{0, 0, 0}

// DefaultTeamColors is the preset palette, assigned to teams in the order the
// backend lists them.
var DefaultTeamColors = []RGB{
	{255, 0, 0},
	{0, 255, 0},
	{0, 0, 255},
	{0, 255, 255},
	{255, 128, 0},
	{255, 0, 255},
}

// WaitingHeatMax is the number of waiting requests at which a vertiport
// reaches full red.
const WaitingHeatMax = 5

// LegendEntry pairs a team with its color.
type LegendEntry struct {
	TeamID ID     `json:"team_id"`
	Name   string `json:"name,omitempty"`
	Color  RGB    `json:"color"`
}

// Palette maps team ids to colors. It is built once from the team list and
// never modified afterwards, so it is safe to share between goroutines.
type Palette struct {
	colors map[ID]RGB
	names  map[ID]string
}

// NewPalette assigns preset colors to teams in order. When there are more
// teams than colors the presets are reused cyclically.
func NewPalette(teams []Team, preset []RGB) *Palette {
	if len(preset) == 0 {
		preset = DefaultTeamColors
	}
	p := &Palette{
		colors: make(map[ID]RGB, len(teams)),
		names:  make(map[ID]string, len(teams)),
	}
	for i, t := range teams {
		if _, dup := p.colors[t.ID]; dup {
			continue
		}
		p.colors[t.ID] = preset[i%len(preset)]
		p.names[t.ID] = t.Name
	}
	return p
}

// Color returns the team's color, or Black for unknown teams.
func (p *Palette) Color(id ID) RGB {
	if p == nil {
		return Black
	}
	if c, ok := p.colors[id]; ok {
		return c
	}
	return Black
}

// Len returns the number of teams in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.colors)
}

// Legend returns all entries sorted by team id.
func (p *Palette) Legend() []LegendEntry {
	if p == nil {
		return nil
	}
	out := make([]LegendEntry, 0, len(p.colors))
	for id, c := range p.colors {
		out = append(out, LegendEntry{TeamID: id, Name: p.names[id], Color: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

// HeatColor maps count onto a green→red ramp: 0 is pure green, max or more is
// pure red. Intermediate values walk the HSL hue from 120° down to 0° at full
// saturation and half lightness.
func HeatColor(count, max int) RGB {
	if max <= 0 {
		return RGB{255, 0, 0}
	}
	if count > max {
		count = max
	}
	if count < 0 {
		count = 0
	}
	i := (1 - float64(count)/float64(max)) * 100
	hue := i * 1.2 / 360
	return hslToRGB(hue, 1, 0.5)
}

func hslToRGB(h, s, l float64) RGB {
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToChannel(p, q, h+1.0/3)
		g = hueToChannel(p, q, h)
		b = hueToChannel(p, q, h-1.0/3)
	}
	return RGB{channel(r), channel(g), channel(b)}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}
