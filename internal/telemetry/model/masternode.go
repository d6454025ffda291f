package model

import "time"

// MasternodeCounts is a snapshot of the masternode network size.
type MasternodeCounts struct {
	Total          uint32    `json:"total"`
	Enabled        uint32    `json:"enabled"`
	RegularTotal   uint32    `json:"regular_total"`
	RegularEnabled uint32    `json:"regular_enabled"`
	EvoTotal       uint32    `json:"evo_total"`
	EvoEnabled     uint32    `json:"evo_enabled"`
	Source         string    `json:"source"`
	FetchedAt      time.Time `json:"fetched_at"`
}
