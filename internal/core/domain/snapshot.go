package domain

import "time"

// Snapshot is the complete view state rendered in one frame. A published
// Snapshot is never modified; the next poll replaces it wholesale.
type Snapshot struct {
	Seq         uint64         `json:"seq"`
	GeneratedAt time.Time      `json:"generated_at"`
	Requests    []RideRequest  `json:"requests"`
	Drones      []DroneState   `json:"drones"`
	Counts      []RequestCount `json:"counts"`
	Vertiports  []Vertiport    `json:"vertiports"`
	Viewport    Viewport       `json:"viewport"`
	IconScale   float64        `json:"icon_scale"`
	Bounds      *Bounds        `json:"bounds,omitempty"`
}

// UnassignedRequests returns the requests not yet taken by a team.
func (s *Snapshot) UnassignedRequests() []RideRequest {
	return s.filterRequests(false)
}

// AssignedRequests returns the requests taken by a team.
func (s *Snapshot) AssignedRequests() []RideRequest {
	return s.filterRequests(true)
}

func (s *Snapshot) filterRequests(assigned bool) []RideRequest {
	out := make([]RideRequest, 0, len(s.Requests))
	for _, r := range s.Requests {
		if r.Assigned() == assigned {
			out = append(out, r)
		}
	}
	return out
}

// Summary digests the snapshot for persistence.
func (s *Snapshot) Summary() SnapshotSummary {
	sum := SnapshotSummary{
		Seq:    s.Seq,
		Time:   s.GeneratedAt,
		Drones: len(s.Drones),
	}
	for _, r := range s.Requests {
		if r.Assigned() {
			sum.Assigned++
		} else {
			sum.Unassigned++
		}
	}
	for _, c := range s.Counts {
		sum.Waiting += c.Count
	}
	return sum
}

// Table is one section of the tabular metrics view.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
