package transport

import "github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"

type blockDTO struct {
	Hash      string  `json:"hash"`
	Height    uint64  `json:"height"`
	Time      int64   `json:"time"`
	TotalFees float64 `json:"total_fees"`
	Reward    float64 `json:"reward"`
	TxCount   uint32  `json:"tx_count"`
}

type epochDTO struct {
	Number             uint64 `json:"number"`
	StartTime          int64  `json:"start_time"`
	EndTime            int64  `json:"end_time"`
	TotalCollectedFees uint64 `json:"total_collected_fees"`
	FeeMultiplier      uint32 `json:"fee_multiplier"`
}

type rangeDTO struct {
	Min   uint64 `json:"min"`
	Max   uint64 `json:"max"`
	Count uint64 `json:"count"`
}

type feeStatsDTO struct {
	Blocks      uint64  `json:"blocks"`
	TotalFees   float64 `json:"total_fees"`
	AvgFees     float64 `json:"avg_fees"`
	TotalReward float64 `json:"total_reward"`
	FirstTime   int64   `json:"first_time"`
	LastTime    int64   `json:"last_time"`
}

type progressDTO struct {
	TotalNeeded  uint64 `json:"total_needed"`
	TotalDone    uint64 `json:"total_done"`
	OldestHeight uint64 `json:"oldest_height"`
	TargetHeight uint64 `json:"target_height"`
	Status       string `json:"status"`
	Running      bool   `json:"running"`
	Gaps         int    `json:"gaps"`
	LastError    string `json:"last_error,omitempty"`
}

type errorDTO struct {
	Error string `json:"error"`
}

func toBlocks(blocks []model.BlockRecord) []blockDTO {
	out := make([]blockDTO, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockDTO(b))
	}
	return out
}

func toEpochs(epochs []model.EpochRecord) []epochDTO {
	out := make([]epochDTO, 0, len(epochs))
	for _, e := range epochs {
		out = append(out, epochDTO(e))
	}
	return out
}

func toProgress(p model.BackfillProgress) progressDTO {
	return progressDTO{
		TotalNeeded:  p.TotalNeeded,
		TotalDone:    p.TotalDone,
		OldestHeight: p.OldestHeight,
		TargetHeight: p.TargetHeight,
		Status:       string(p.Status),
		Running:      p.Running,
		Gaps:         p.Gaps,
		LastError:    p.LastError,
	}
}
