package usecases

import (
	"fmt"
	"strconv"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// MetricsView renders the tabular dashboard tab from a snapshot.
func MetricsView(snap *domain.Snapshot, palette *domain.Palette) []domain.Table {
	tables := make([]domain.Table, 0, 6)

	unassigned := domain.Table{
		Title:   "Unassigned Requests",
		Headers: []string{"Request ID", "Time Requested", "From Port", "To Port"},
	}
	assigned := domain.Table{
		Title:   "Assigned Requests",
		Headers: []string{"Request ID", "Time Requested", "From Port", "To Port", "Assigned Team"},
	}
	for _, r := range snap.Requests {
		if r.Assigned() {
			assigned.Rows = append(assigned.Rows, []string{
				r.RequestID.String(), string(r.TimeRequested), r.FromPort.String(), r.ToPort.String(), r.TeamID.String(),
			})
			continue
		}
		unassigned.Rows = append(unassigned.Rows, []string{
			r.RequestID.String(), string(r.TimeRequested), r.FromPort.String(), r.ToPort.String(),
		})
	}
	tables = append(tables, unassigned, assigned)

	drones := domain.Table{
		Title: "Current Drone Locations",
		Headers: []string{"Drone ID", "Team ID", "Time Stamp", "Latitude", "Longitude", "Altitude", "Velocity",
			"# Passengers", "Battery Left", "Request #"},
	}
	for _, d := range snap.Drones {
		drones.Rows = append(drones.Rows, []string{
			d.DroneID.String(), d.TeamID.String(), string(d.TimeStamp),
			formatFloat(d.Latitude), formatFloat(d.Longitude), formatFloat(d.Altitude),
			formatFloat(d.Velocity), strconv.Itoa(d.Passengers), formatFloat(d.BatteryLeft),
			d.Fulfilling.String(),
		})
	}
	tables = append(tables, drones)

	summary := domain.Table{
		Title:   "Unassigned Port Request Summary",
		Headers: []string{"From Port", "To Port", "# Unassigned Requests"},
	}
	for _, c := range snap.Counts {
		summary.Rows = append(summary.Rows, []string{c.FromPortName, c.ToPortName, strconv.Itoa(c.Count)})
	}
	tables = append(tables, summary)

	ports := domain.Table{
		Title:   "Ports",
		Headers: []string{"Name", "Latitude", "Longitude", "Altitude"},
	}
	for _, p := range snap.Vertiports {
		ports.Rows = append(ports.Rows, []string{
			p.PortName, formatFloat(p.Latitude), formatFloat(p.Longitude), formatFloat(p.Altitude),
		})
	}
	tables = append(tables, ports)

	teams := domain.Table{
		Title:   "Teams",
		Headers: []string{"Name", "Drone Color"},
	}
	for _, e := range palette.Legend() {
		teams.Rows = append(teams.Rows, []string{
			e.TeamID.String(), fmt.Sprintf("[%d, %d, %d]", e.Color[0], e.Color[1], e.Color[2]),
		})
	}
	tables = append(tables, teams)

	return tables
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
