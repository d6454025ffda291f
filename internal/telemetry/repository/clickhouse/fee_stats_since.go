package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// FeeStatsSince aggregates fees and rewards of blocks at or after since (unix seconds).
func (r *Repository) FeeStatsSince(ctx context.Context, since int64) (stats model.FeeStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("fee_stats_since", err, start)
	}()

	rows, err := r.conn.Query(ctx, feeStatsSinceQuery, since)
	if err != nil {
		return model.FeeStats{}, fmt.Errorf("query fee stats since %d: %w", since, err)
	}
	defer closeRows(rows, &err)

	if !rows.Next() {
		return model.FeeStats{}, fmt.Errorf("fee stats not found")
	}
	if err = rows.Scan(&stats.Blocks, &stats.TotalFees, &stats.TotalReward, &stats.FirstTime, &stats.LastTime); err != nil {
		return model.FeeStats{}, fmt.Errorf("scan fee stats: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.FeeStats{}, fmt.Errorf("iterate fee stats: %w", err)
	}
	if stats.Blocks == 0 {
		return model.FeeStats{}, nil
	}
	stats.AvgFees = stats.TotalFees / float64(stats.Blocks)
	return stats, nil
}

const feeStatsSinceQuery = `
SELECT
	count() AS blocks,
	sum(total_fees) AS total_fees,
	sum(reward) AS total_reward,
	coalesce(min(block_time), toInt64(0)) AS first_time,
	coalesce(max(block_time), toInt64(0)) AS last_time
FROM dash_blocks FINAL
WHERE block_time >= ?`
