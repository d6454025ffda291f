package model

import (
	"errors"
	"time"
)

// Checkpoint keys written by the sync controllers.
const (
	CheckpointBackfillTarget = "backfill_target_height"
	CheckpointBackfillOldest = "backfill_oldest_height"
	CheckpointBackfillGaps   = "backfill_gaps"
	CheckpointMasternodes    = "masternode_counts"
)

// ErrCheckpointNotFound is returned when a checkpoint key has never been written.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is a persisted key/value pair.
type Checkpoint struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
