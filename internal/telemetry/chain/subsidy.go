// Package chain holds Dash reward rules and the ordered provider chains shared by the telemetry sources.
package chain

import (
	"math"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// Params describes the reward schedule used to attribute fees.
type Params struct {
	// InitialSubsidy is the full block subsidy of the first reduction era, in DASH.
	InitialSubsidy float64
	// ReductionInterval is the number of blocks between 1/14 subsidy reductions.
	ReductionInterval uint64
	// SuperblockCycle is the superblock period in blocks.
	SuperblockCycle uint64
	// MinerShare is the part of the subsidy paid out by a regular coinbase; the rest funds superblocks.
	MinerShare float64
}

// MainnetParams returns the Dash mainnet schedule.
func MainnetParams() Params {
	return Params{
		InitialSubsidy:    5,
		ReductionInterval: 210240,
		SuperblockCycle:   16616,
		MinerShare:        0.8,
	}
}

// Era returns the number of completed reduction intervals at height.
func (p Params) Era(height uint64) uint64 {
	if p.ReductionInterval == 0 {
		return 0
	}
	return height / p.ReductionInterval
}

// Subsidy returns the full block subsidy at height: the initial value reduced by 1/14 once per era, compounding.
func (p Params) Subsidy(height uint64) float64 {
	return p.InitialSubsidy * math.Pow(13.0/14.0, float64(p.Era(height)))
}

// IsSuperblock reports whether height is a superblock (height mod cycle == 0).
func (p Params) IsSuperblock(height uint64) bool {
	if p.SuperblockCycle == 0 {
		return false
	}
	return height%p.SuperblockCycle == 0
}

// FromBlockStats builds a record from node-reported fee and subsidy values (DASH).
// Superblocks carry no fees and their subsidy is pinned to the schedule, dropping the treasury payout.
func (p Params) FromBlockStats(hash string, height uint64, timestamp int64, txCount uint32, totalFees, subsidy float64) model.BlockRecord {
	if p.IsSuperblock(height) {
		totalFees = 0
		subsidy = p.Subsidy(height)
	}
	return record(hash, height, timestamp, txCount, totalFees, subsidy)
}

// FromCoinbase reconstructs fees from the coinbase payout when the source does not expose them.
// fee = max(0, coinbase - MinerShare*subsidy); superblocks are fee-free.
func (p Params) FromCoinbase(hash string, height uint64, timestamp int64, txCount uint32, coinbaseOut float64) model.BlockRecord {
	subsidy := p.Subsidy(height)
	var fees float64
	if !p.IsSuperblock(height) {
		fees = math.Max(0, coinbaseOut-p.MinerShare*subsidy)
	}
	return record(hash, height, timestamp, txCount, fees, subsidy)
}

func record(hash string, height uint64, timestamp int64, txCount uint32, fees, subsidy float64) model.BlockRecord {
	return model.BlockRecord{
		Hash:      hash,
		Height:    height,
		Time:      timestamp,
		TotalFees: fees,
		Reward:    subsidy + fees,
		TxCount:   txCount,
	}
}
