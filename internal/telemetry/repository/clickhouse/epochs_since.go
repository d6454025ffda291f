package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// EpochsSince returns epochs that started at or after sinceMs (unix milliseconds), oldest first.
func (r *Repository) EpochsSince(ctx context.Context, sinceMs int64) (epochs []model.EpochRecord, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("epochs_since", err, start)
	}()

	rows, err := r.conn.Query(ctx, epochsSinceQuery, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("query epochs since %d: %w", sinceMs, err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var e model.EpochRecord
		if err = rows.Scan(&e.Number, &e.StartTime, &e.EndTime, &e.TotalCollectedFees, &e.FeeMultiplier); err != nil {
			return nil, fmt.Errorf("scan epoch: %w", err)
		}
		epochs = append(epochs, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate epochs: %w", err)
	}
	return epochs, nil
}

const epochsSinceQuery = `
SELECT epoch_number, start_time, end_time, total_collected_fees, fee_multiplier
FROM dash_epochs FINAL
WHERE start_time >= ?
ORDER BY start_time ASC`
