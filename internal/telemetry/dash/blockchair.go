package dash

import (
	"context"
	"errors"
)

type blockchairStats struct {
	Data struct {
		BestBlockHeight uint64 `json:"best_block_height"`
	} `json:"data"`
}

// Blockchair is the last-resort tip height source.
type Blockchair struct {
	http *HTTPClient
}

// NewBlockchair creates a Blockchair height source.
func NewBlockchair(http *HTTPClient) *Blockchair {
	return &Blockchair{http: http}
}

func (s *Blockchair) Name() string {
	return s.http.Name()
}

// LatestHeight returns data.best_block_height from /dash/stats.
func (s *Blockchair) LatestHeight(ctx context.Context) (uint64, error) {
	var stats blockchairStats
	if err := s.http.getJSON(ctx, "stats", "/dash/stats", &stats); err != nil {
		return 0, err
	}
	if stats.Data.BestBlockHeight == 0 {
		return 0, errors.New("blockchair stats reported zero height")
	}
	return stats.Data.BestBlockHeight, nil
}
