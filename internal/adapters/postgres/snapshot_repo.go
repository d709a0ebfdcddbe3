package postgres

import (
	"context"
	"time"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// SnapshotRepo implements ports.SnapshotRepository.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) Insert(ctx context.Context, sum domain.SnapshotSummary) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO snapshot_summaries (time, seq, drones, unassigned, assigned, waiting)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sum.Time, int64(sum.Seq), sum.Drones, sum.Unassigned, sum.Assigned, sum.Waiting)
	return err
}

// List returns one page of summaries, newest first, and the total count.
func (r *SnapshotRepo) List(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM snapshot_summaries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT time, seq, drones, unassigned, assigned, waiting
		FROM snapshot_summaries
		ORDER BY time DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sums := make([]domain.SnapshotSummary, 0, limit)
	for rows.Next() {
		var s domain.SnapshotSummary
		var seq int64
		if err := rows.Scan(&s.Time, &seq, &s.Drones, &s.Unassigned, &s.Assigned, &s.Waiting); err != nil {
			return nil, 0, err
		}
		s.Seq = uint64(seq)
		sums = append(sums, s)
	}
	return sums, total, rows.Err()
}

func (r *SnapshotRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM snapshot_summaries WHERE time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
