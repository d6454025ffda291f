package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// Checkpoint returns the value stored under key, or model.ErrCheckpointNotFound.
func (r *Repository) Checkpoint(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("checkpoint", err, start)
	}()

	rows, err := r.conn.Query(ctx, checkpointQuery, key)
	if err != nil {
		return "", fmt.Errorf("query checkpoint %s: %w", key, err)
	}
	defer closeRows(rows, &err)

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return "", fmt.Errorf("iterate checkpoint %s: %w", key, err)
		}
		return "", model.ErrCheckpointNotFound
	}
	if err = rows.Scan(&value); err != nil {
		return "", fmt.Errorf("scan checkpoint %s: %w", key, err)
	}
	return value, nil
}

// SetCheckpoint replaces the value under key.
func (r *Repository) SetCheckpoint(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("set_checkpoint", err, start)
	}()

	if err = r.conn.Exec(ctx, setCheckpointQuery, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set checkpoint %s: %w", key, err)
	}
	return nil
}

const checkpointQuery = `
SELECT value
FROM sync_checkpoints FINAL
WHERE key = ?
LIMIT 1`

const setCheckpointQuery = `
INSERT INTO sync_checkpoints (key, value, updated_at) VALUES (?, ?, ?)`
