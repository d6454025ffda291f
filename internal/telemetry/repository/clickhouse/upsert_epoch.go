package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// UpsertEpoch writes an epoch. An existing epoch keeps its start time and fee multiplier;
// only the collected fees and end time are refreshed.
func (r *Repository) UpsertEpoch(ctx context.Context, epoch model.EpochRecord) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_epoch", err, start)
	}()

	rows, err := r.conn.Query(ctx, epochHeadQuery, epoch.Number)
	if err != nil {
		return fmt.Errorf("query epoch %d: %w", epoch.Number, err)
	}
	var (
		startTime  int64
		multiplier uint32
	)
	found := rows.Next()
	if found {
		err = rows.Scan(&startTime, &multiplier)
	}
	if closeErr := rows.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close rows: %w", closeErr)
	}
	if err != nil {
		return fmt.Errorf("scan epoch %d: %w", epoch.Number, err)
	}
	if found {
		epoch.StartTime = startTime
		epoch.FeeMultiplier = multiplier
	}
	if epoch.FeeMultiplier == 0 {
		epoch.FeeMultiplier = model.DefaultFeeMultiplier
	}

	if err = r.conn.Exec(ctx, insertEpochQuery,
		epoch.Number,
		epoch.StartTime,
		epoch.EndTime,
		epoch.TotalCollectedFees,
		epoch.FeeMultiplier,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("upsert epoch %d: %w", epoch.Number, err)
	}
	return nil
}

const epochHeadQuery = `
SELECT start_time, fee_multiplier
FROM dash_epochs FINAL
WHERE epoch_number = ?
LIMIT 1`

const insertEpochQuery = `
INSERT INTO dash_epochs (
	epoch_number,
	start_time,
	end_time,
	total_collected_fees,
	fee_multiplier,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?)`
