package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// TrackRepo implements ports.TrackRepository.
type TrackRepo struct {
	db *DB
}

func NewTrackRepo(db *DB) *TrackRepo {
	return &TrackRepo{db: db}
}

const insertTrackPoint = `
	INSERT INTO track_points (time, seq, drone_id, team_id, location, altitude, velocity, battery_left, passengers, is_physical)
	VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8, $9, $10, $11)
	ON CONFLICT (drone_id, time) DO NOTHING`

// InsertBatch writes all points in one round trip.
func (r *TrackRepo) InsertBatch(ctx context.Context, points []domain.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(insertTrackPoint,
			p.Time, int64(p.Seq), p.DroneID, nilIfEmpty(p.TeamID),
			p.Location.Lon, p.Location.Lat,
			p.Altitude, p.Velocity, p.BatteryLeft, p.Passengers, p.IsPhysical)
	}
	if err := r.db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %d track points: %w", len(points), err)
	}
	return nil
}

// Latest returns the most recent points of a drone in chronological order.
func (r *TrackRepo) Latest(ctx context.Context, droneID string, limit int) ([]domain.TrackPoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT time, seq, drone_id, COALESCE(team_id, ''),
			ST_Y(location::geometry) AS lat,
			ST_X(location::geometry) AS lon,
			altitude, velocity, battery_left, passengers, is_physical
		FROM (
			SELECT * FROM track_points
			WHERE drone_id = $1
			ORDER BY time DESC
			LIMIT $2
		) latest
		ORDER BY time ASC
	`, droneID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TrackPoint
	for rows.Next() {
		var p domain.TrackPoint
		var seq int64
		if err := rows.Scan(
			&p.Time, &seq, &p.DroneID, &p.TeamID,
			&p.Location.Lat, &p.Location.Lon,
			&p.Altitude, &p.Velocity, &p.BatteryLeft, &p.Passengers, &p.IsPhysical,
		); err != nil {
			return nil, err
		}
		p.Seq = uint64(seq)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *TrackRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM track_points WHERE time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
