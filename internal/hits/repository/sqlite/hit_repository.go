package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"hitstream/internal/hits/usecase"
)

// HitRepository implements the usecase.HitRepository interface on SQLite.
type HitRepository struct {
	db *sql.DB
}

// NewHitRepository creates a new SQLite-backed hit repository
func NewHitRepository(db *sql.DB) *HitRepository {
	return &HitRepository{db: db}
}

// Ensure HitRepository implements usecase.HitRepository at compile time
var _ usecase.HitRepository = (*HitRepository)(nil)

const insertHit = `INSERT INTO hits (
	id, tracking_id, client_id, hit_type, server_time_utc, hit_date,
	device_category, channel, page_path, hostname, body
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertHit stores a formatted hit
func (r *HitRepository) InsertHit(ctx context.Context, hit usecase.HitRecord) error {
	_, err := r.db.ExecContext(ctx, insertHit,
		hit.ID,
		hit.TrackingID,
		hit.ClientID,
		hit.HitType,
		hit.ServerTimeUTC,
		hit.HitDate,
		hit.DeviceCategory,
		hit.Channel,
		hit.PagePath,
		hit.Hostname,
		string(hit.Body),
	)
	return err
}

// CountInRange returns total hits within a time range
func (r *HitRepository) CountInRange(ctx context.Context, trackingID string, from int64, to int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hits WHERE tracking_id = ? AND server_time_utc BETWEEN ? AND ?`,
		trackingID, from, to,
	).Scan(&count)
	return count, err
}

// CountByHitTypeInRange returns hit counts grouped by hit type within a time range
func (r *HitRepository) CountByHitTypeInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	return r.countBy(ctx, "hit_type", trackingID, from, to)
}

// CountByDeviceInRange returns hit counts grouped by device category within a time range
func (r *HitRepository) CountByDeviceInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	return r.countBy(ctx, "device_category", trackingID, from, to)
}

// CountByChannelInRange returns hit counts grouped by channel within a time range
func (r *HitRepository) CountByChannelInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	return r.countBy(ctx, "channel", trackingID, from, to)
}

// countBy groups on column, which must be one of the fixed column names above.
func (r *HitRepository) countBy(ctx context.Context, column, trackingID string, from, to int64) ([]usecase.GroupCount, error) {
	query := fmt.Sprintf(
		`SELECT %[1]s, COUNT(*) AS count FROM hits
		WHERE tracking_id = ? AND server_time_utc BETWEEN ? AND ?
		GROUP BY %[1]s ORDER BY count DESC, %[1]s ASC`, column)

	rows, err := r.db.QueryContext(ctx, query, trackingID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []usecase.GroupCount{}
	for rows.Next() {
		var g usecase.GroupCount
		if err := rows.Scan(&g.Value, &g.Count); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// ListHits returns paginated hits older than cursor, newest first
func (r *HitRepository) ListHits(ctx context.Context, trackingID string, cursor usecase.Cursor, limit int) (*usecase.PaginatedHits, error) {
	// Fetch limit+1 to detect if there are more results
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tracking_id, client_id, hit_type, server_time_utc, hit_date,
			device_category, channel, page_path, hostname, body
		FROM hits
		WHERE tracking_id = ?
			AND (server_time_utc < ? OR (server_time_utc = ? AND id < ?))
		ORDER BY server_time_utc DESC, id DESC
		LIMIT ?`,
		trackingID, cursor.ServerTimeUTC, cursor.ServerTimeUTC, cursor.ID, limit+1,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []usecase.HitRecord{}
	for rows.Next() {
		var h usecase.HitRecord
		var body string
		if err := rows.Scan(
			&h.ID, &h.TrackingID, &h.ClientID, &h.HitType, &h.ServerTimeUTC, &h.HitDate,
			&h.DeviceCategory, &h.Channel, &h.PagePath, &h.Hostname, &body,
		); err != nil {
			return nil, err
		}
		h.Body = []byte(body)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(hits) > limit
	if hasMore {
		hits = hits[:limit]
	}

	var nextCursor string
	if hasMore && len(hits) > 0 {
		last := hits[len(hits)-1]
		nextCursor = usecase.EncodeCursor(usecase.Cursor{ServerTimeUTC: last.ServerTimeUTC, ID: last.ID})
	}

	return &usecase.PaginatedHits{
		Hits:       hits,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
