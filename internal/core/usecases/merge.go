package usecases

import (
	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// Merge composes one poll batch with the startup reference data into a new
// snapshot. It copies every record, so the result shares no memory with the
// batch or with ref.
func Merge(b domain.Batch, ref *Reference, vp domain.Viewport) *domain.Snapshot {
	palette := ref.palette()

	requests := make([]domain.RideRequest, 0, len(b.Unassigned)+len(b.Assigned))
	for _, r := range b.Unassigned {
		r.Color = domain.Black
		requests = append(requests, r)
	}
	for _, r := range b.Assigned {
		r.Color = palette.Color(r.TeamID)
		requests = append(requests, r)
	}

	drones := make([]domain.DroneState, 0, len(b.Drones))
	for _, d := range b.Drones {
		d.Icon = domain.IconVirtualDrone
		if d.IsPhysical {
			d.Icon = domain.IconDrone
		}
		d.Size = domain.DroneIconSize
		d.Color = palette.Color(d.TeamID)
		drones = append(drones, d)
	}

	counts := make([]domain.RequestCount, len(b.Counts))
	copy(counts, b.Counts)

	waiting := WaitingByPort(counts)
	var refPorts []domain.Vertiport
	if ref != nil {
		refPorts = ref.Vertiports
	}
	ports := make([]domain.Vertiport, 0, len(refPorts))
	for _, p := range refPorts {
		p.Icon = domain.IconVertiport
		p.Size = domain.VertiportIconSize
		p.Waiting = waiting[p.PortID]
		p.Color = domain.HeatColor(p.Waiting, domain.WaitingHeatMax)
		ports = append(ports, p)
	}

	return &domain.Snapshot{
		Requests:   requests,
		Drones:     drones,
		Counts:     counts,
		Vertiports: ports,
		Viewport:   vp,
		IconScale:  vp.IconScale(),
		Bounds:     extent(requests, drones, ports),
	}
}

// WaitingByPort maps each origin port to the count of its last row in
// counts. Earlier rows for the same port are overwritten, not summed.
func WaitingByPort(counts []domain.RequestCount) map[domain.ID]int {
	out := make(map[domain.ID]int, len(counts))
	for _, c := range counts {
		out[c.FromPort] = c.Count
	}
	return out
}

func extent(requests []domain.RideRequest, drones []domain.DroneState, ports []domain.Vertiport) *domain.Bounds {
	var b domain.Bounds
	seen := false
	add := func(lat, lon float64) {
		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if !seen {
			b = domain.PointBounds(p)
			seen = true
			return
		}
		b = b.Extend(p)
	}
	for _, p := range ports {
		add(p.Latitude, p.Longitude)
	}
	for _, d := range drones {
		add(d.Latitude, d.Longitude)
	}
	for _, r := range requests {
		add(r.FromLatitude, r.FromLongitude)
		add(r.ToLatitude, r.ToLongitude)
	}
	if !seen {
		return nil
	}
	return &b
}
