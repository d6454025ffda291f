// Package model defines domain models for Dash telemetry ingestion.
package model

// BlockRecord is the normalized per-block fee and reward row kept in the cache.
// Amounts are in DASH.
type BlockRecord struct {
	Hash      string
	Height    uint64
	Time      int64
	TotalFees float64
	Reward    float64
	TxCount   uint32
}

// HeightRange summarizes cached block heights. All fields are zero for an empty cache.
type HeightRange struct {
	Min   uint64
	Max   uint64
	Count uint64
}

// Empty reports whether no block is cached.
func (r HeightRange) Empty() bool {
	return r.Count == 0
}

// FeeStats aggregates cached blocks over a time window.
type FeeStats struct {
	Blocks      uint64
	TotalFees   float64
	AvgFees     float64
	TotalReward float64
	FirstTime   int64
	LastTime    int64
}
