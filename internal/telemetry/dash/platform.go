package dash

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

type platformStatus struct {
	Epoch struct {
		Number uint64 `json:"number"`
	} `json:"epoch"`
}

type platformEpoch struct {
	Epoch struct {
		Number        uint64 `json:"number"`
		StartTime     int64  `json:"startTime"`
		EndTime       int64  `json:"endTime"`
		FeeMultiplier uint32 `json:"feeMultiplier"`
	} `json:"epoch"`
	TotalCollectedFees uint64 `json:"totalCollectedFees"`
}

// Platform reads epoch data from a Platform explorer API.
type Platform struct {
	http *HTTPClient
}

// NewPlatform creates a Platform client.
func NewPlatform(http *HTTPClient) *Platform {
	return &Platform{http: http}
}

// CurrentEpoch returns the number of the epoch in progress.
func (p *Platform) CurrentEpoch(ctx context.Context) (uint64, error) {
	var status platformStatus
	if err := p.http.getJSON(ctx, "status", "/status", &status); err != nil {
		return 0, fmt.Errorf("platform status: %w", err)
	}
	return status.Epoch.Number, nil
}

// Epoch returns one epoch's times and collected fees.
func (p *Platform) Epoch(ctx context.Context, number uint64) (model.EpochRecord, error) {
	var epoch platformEpoch
	if err := p.http.getJSON(ctx, "epoch", "/epoch/"+strconv.FormatUint(number, 10), &epoch); err != nil {
		return model.EpochRecord{}, fmt.Errorf("platform epoch %d: %w", number, err)
	}
	if epoch.Epoch.Number != number {
		return model.EpochRecord{}, fmt.Errorf("platform epoch mismatch: asked %d, got %d", number, epoch.Epoch.Number)
	}

	multiplier := epoch.Epoch.FeeMultiplier
	if multiplier == 0 {
		multiplier = model.DefaultFeeMultiplier
	}
	return model.EpochRecord{
		Number:             number,
		StartTime:          epoch.Epoch.StartTime,
		EndTime:            epoch.Epoch.EndTime,
		TotalCollectedFees: epoch.TotalCollectedFees,
		FeeMultiplier:      multiplier,
	}, nil
}
