package dash

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

type masternodeAPICounts struct {
	Total   uint32 `json:"total"`
	Enabled uint32 `json:"enabled"`
	Regular struct {
		Total   uint32 `json:"total"`
		Enabled uint32 `json:"enabled"`
	} `json:"regular"`
	Evo struct {
		Total   uint32 `json:"total"`
		Enabled uint32 `json:"enabled"`
	} `json:"evo"`
}

// MasternodeAPI reads masternode counts from a third-party endpoint.
type MasternodeAPI struct {
	http *HTTPClient
	path string
}

// NewMasternodeAPI creates the public masternode count source. path is appended to the client's base URL.
func NewMasternodeAPI(http *HTTPClient, path string) *MasternodeAPI {
	return &MasternodeAPI{http: http, path: path}
}

// Counts fetches the current counts.
func (m *MasternodeAPI) Counts(ctx context.Context) (model.MasternodeCounts, error) {
	var res masternodeAPICounts
	if err := m.http.getJSON(ctx, "masternode_count", m.path, &res); err != nil {
		return model.MasternodeCounts{}, err
	}
	if res.Total == 0 {
		return model.MasternodeCounts{}, errors.New("masternode api reported zero masternodes")
	}
	return model.MasternodeCounts{
		Total:          res.Total,
		Enabled:        res.Enabled,
		RegularTotal:   res.Regular.Total,
		RegularEnabled: res.Regular.Enabled,
		EvoTotal:       res.Evo.Total,
		EvoEnabled:     res.Evo.Enabled,
		Source:         m.http.Name(),
		FetchedAt:      time.Now().UTC(),
	}, nil
}

// MasternodeCounts converts the RPC reply into the model snapshot.
func (r MasternodeCountResult) MasternodeCounts() model.MasternodeCounts {
	return model.MasternodeCounts{
		Total:          r.Total,
		Enabled:        r.Enabled,
		RegularTotal:   r.Detailed.Regular.Total,
		RegularEnabled: r.Detailed.Regular.Enabled,
		EvoTotal:       r.Detailed.Evo.Total,
		EvoEnabled:     r.Detailed.Evo.Enabled,
		Source:         "rpc",
		FetchedAt:      time.Now().UTC(),
	}
}
