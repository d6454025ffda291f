package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// HeightRange returns the min and max cached heights and the block count. All zero when empty.
func (r *Repository) HeightRange(ctx context.Context) (hr model.HeightRange, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("height_range", err, start)
	}()

	rows, err := r.conn.Query(ctx, heightRangeQuery)
	if err != nil {
		return model.HeightRange{}, fmt.Errorf("query height range: %w", err)
	}
	defer closeRows(rows, &err)

	if !rows.Next() {
		return model.HeightRange{}, fmt.Errorf("height range not found")
	}
	if err = rows.Scan(&hr.Min, &hr.Max, &hr.Count); err != nil {
		return model.HeightRange{}, fmt.Errorf("scan height range: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.HeightRange{}, fmt.Errorf("iterate height range: %w", err)
	}
	if hr.Count == 0 {
		return model.HeightRange{}, nil
	}
	return hr, nil
}

const heightRangeQuery = `
SELECT
	coalesce(min(height), toUInt64(0)) AS min_height,
	coalesce(max(height), toUInt64(0)) AS max_height,
	count() AS blocks
FROM dash_blocks FINAL`
