package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// BlocksSince returns cached blocks with block time at or after since (unix seconds), oldest first.
func (r *Repository) BlocksSince(ctx context.Context, since int64) (blocks []model.BlockRecord, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("blocks_since", err, start)
	}()

	rows, err := r.conn.Query(ctx, blocksSinceQuery, since)
	if err != nil {
		return nil, fmt.Errorf("query blocks since %d: %w", since, err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var b model.BlockRecord
		if err = rows.Scan(&b.Hash, &b.Height, &b.Time, &b.TotalFees, &b.Reward, &b.TxCount); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

const blocksSinceQuery = `
SELECT hash, height, block_time, total_fees, reward, tx_count
FROM dash_blocks FINAL
WHERE block_time >= ?
ORDER BY block_time ASC, height ASC`
