package model

// DefaultFeeMultiplier applies when the platform does not report one.
const DefaultFeeMultiplier uint32 = 1

// EpochRecord describes one platform epoch. Times are unix milliseconds, fees are credits.
type EpochRecord struct {
	Number             uint64
	StartTime          int64
	EndTime            int64
	TotalCollectedFees uint64
	FeeMultiplier      uint32
}
