package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// InsertBlock stores a block unless its hash is already cached. It reports whether a row was written.
// Two writers racing on one hash may both report true; the table engine collapses the duplicate.
func (r *Repository) InsertBlock(ctx context.Context, block model.BlockRecord) (inserted bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_block", err, start)
	}()

	rows, err := r.conn.Query(ctx, blockExistsQuery, block.Hash)
	if err != nil {
		return false, fmt.Errorf("query block exists: %w", err)
	}
	var count uint64
	if rows.Next() {
		err = rows.Scan(&count)
	}
	if closeErr := rows.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close rows: %w", closeErr)
	}
	if err != nil {
		return false, fmt.Errorf("scan block exists: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err = r.conn.Exec(ctx, insertBlockQuery,
		block.Hash,
		block.Height,
		block.Time,
		block.TotalFees,
		block.Reward,
		block.TxCount,
	); err != nil {
		return false, fmt.Errorf("insert block %d: %w", block.Height, err)
	}
	return true, nil
}

const blockExistsQuery = `
SELECT count()
FROM dash_blocks
WHERE hash = ?`

const insertBlockQuery = `
INSERT INTO dash_blocks (
	hash,
	height,
	block_time,
	total_fees,
	reward,
	tx_count
) VALUES (?, ?, ?, ?, ?, ?)`
