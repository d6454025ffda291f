package syncer

import "time"

const (
	forwardMaxBlocks       uint64 = 50
	forwardPrivilegedBatch        = 10
	forwardPublicBatch            = 2
	forwardPrivilegedDelay        = 100 * time.Millisecond
	forwardPublicDelay            = 2 * time.Second

	backfillPrivilegedBatch   = 20
	backfillPublicBatch       = 2
	backfillPrivilegedBackoff = 2 * time.Second
	backfillPublicBackoff     = 15 * time.Second
	backfillMaxBackoffFactor  = 6
	backfillCheckpointEvery   = 200
	backfillGapRounds         = 3

	// DefaultBlockInterval is the average Dash block time used to estimate the backfill target.
	DefaultBlockInterval = 150 * time.Second
	// DefaultFloorHeight is the backfill target when nothing is cached yet.
	DefaultFloorHeight uint64 = 1_990_000

	epochDelay               = 200 * time.Millisecond
	epochMaxConsecutiveFails = 5
	recentEpochBatch         = 5

	masternodeTTL = 5 * time.Minute

	// DefaultForwardInterval, DefaultEpochInterval and DefaultBackfillRetry drive the scheduler.
	DefaultForwardInterval = 5 * time.Minute
	DefaultEpochInterval   = 15 * time.Minute
	DefaultBackfillRetry   = 30 * time.Second
)

// DefaultCutoff is the oldest block and epoch time kept in the cache.
var DefaultCutoff = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
