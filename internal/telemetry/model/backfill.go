package model

// BackfillStatus is the lifecycle state of the backfill controller.
type BackfillStatus string

var (
	BackfillIdle     BackfillStatus = "idle"
	BackfillRunning  BackfillStatus = "running"
	BackfillComplete BackfillStatus = "complete"
	BackfillPaused   BackfillStatus = "paused"
	BackfillError    BackfillStatus = "error"
)

// BackfillProgress is a point-in-time snapshot of the backfill walk.
type BackfillProgress struct {
	TotalNeeded  uint64
	TotalDone    uint64
	OldestHeight uint64
	TargetHeight uint64
	Status       BackfillStatus
	Running      bool
	Gaps         int
	LastError    string
}
