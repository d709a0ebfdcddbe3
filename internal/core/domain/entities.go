package domain

import (
	"time"
)

// Request states reported by the fleet backend.
const (
	RequestStateAssigned = "ASSIGNED"
)

// Icon names understood by the map frontend's icon atlas.
const (
	IconDrone        = "drone"
	IconVirtualDrone = "virtual_drone"
	IconVertiport    = "vertiport"
)

// Base icon sizes before the zoom scale factor is applied.
const (
	DroneIconSize     = 75
	VertiportIconSize = 100
)

// Team is an operator whose drones and assigned requests share a color.
type Team struct {
	ID   ID     `json:"id"`
	Name string `json:"name,omitempty"`
}

// Vertiport is a fixed ground station where drones load and unload passengers.
type Vertiport struct {
	PortID    ID      `json:"port_id"`
	PortName  string  `json:"port_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`

	// Decorations added when the vertiport is merged into a snapshot.
	Icon    string `json:"icon,omitempty"`
	Size    int    `json:"size,omitempty"`
	Color   RGB    `json:"color"`
	Waiting int    `json:"waiting"`
}

// RideRequest is a passenger request between two vertiports.
type RideRequest struct {
	RequestID     ID      `json:"request_id"`
	TimeRequested Stamp   `json:"time_requested"`
	FromPort      ID      `json:"from_port"`
	ToPort        ID      `json:"to_port"`
	TeamID        ID      `json:"team_id,omitempty"`
	State         string  `json:"state,omitempty"`
	FromLatitude  float64 `json:"from_latitude"`
	FromLongitude float64 `json:"from_longitude"`
	FromAltitude  float64 `json:"from_altitude"`
	ToLatitude    float64 `json:"to_latitude"`
	ToLongitude   float64 `json:"to_longitude"`
	ToAltitude    float64 `json:"to_altitude"`

	Color RGB `json:"color"`
}

// Assigned reports whether a team has taken the request.
func (r RideRequest) Assigned() bool {
	return r.State == RequestStateAssigned
}

// DroneState is the latest reported state of one drone.
type DroneState struct {
	DroneID     ID      `json:"drone_id"`
	TeamID      ID      `json:"team_id"`
	TimeStamp   Stamp   `json:"time_stamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude"`
	Velocity    float64 `json:"velocity"`
	Passengers  int     `json:"k_passengers"`
	BatteryLeft float64 `json:"battery_left"`
	Fulfilling  ID      `json:"fulfilling,omitempty"`
	IsPhysical  bool    `json:"is_physical"`

	Icon  string `json:"icon,omitempty"`
	Size  int    `json:"size,omitempty"`
	Color RGB    `json:"color"`
}

// RequestCount aggregates unassigned requests for one origin/destination pair.
type RequestCount struct {
	FromPort     ID     `json:"from_port"`
	ToPort       ID     `json:"to_port"`
	FromPortName string `json:"from_port_name"`
	ToPortName   string `json:"to_port_name"`
	Count        int    `json:"count"`
}

// Batch is the raw result of one poll cycle, before merging.
type Batch struct {
	Unassigned []RideRequest
	Assigned   []RideRequest
	Drones     []DroneState
	Counts     []RequestCount
}

// TrackPoint is one recorded position of a drone.
type TrackPoint struct {
	Time        time.Time `json:"time"`
	Seq         uint64    `json:"seq"`
	DroneID     string    `json:"drone_id"`
	TeamID      string    `json:"team_id"`
	Location    GeoPoint  `json:"location"`
	Altitude    float64   `json:"altitude"`
	Velocity    float64   `json:"velocity"`
	BatteryLeft float64   `json:"battery_left"`
	Passengers  int       `json:"k_passengers"`
	IsPhysical  bool      `json:"is_physical"`
}

// Trail is the recent path of a single drone.
type Trail struct {
	DroneID      string       `json:"drone_id"`
	Points       []TrackPoint `json:"points"`
	LengthMeters float64      `json:"length_meters"`
}

// SnapshotSummary is the persisted digest of a published snapshot.
type SnapshotSummary struct {
	Seq        uint64    `json:"seq"`
	Time       time.Time `json:"time"`
	Drones     int       `json:"drones"`
	Unassigned int       `json:"unassigned"`
	Assigned   int       `json:"assigned"`
	Waiting    int       `json:"waiting"`
}
