package models

import "time"

// OfflineStation is a station that was open but reported no battery slots.
type OfflineStation struct {
	StationID   string    `json:"stationId"`
	Title       string    `json:"title"`
	Vendor      string    `json:"vendor"`
	Timezone    string    `json:"timezone"`
	Hours       WeekHours `json:"hours"`
	LastChecked time.Time `json:"lastChecked"`
}

// StationError is a per-station failure recorded during a monitor run.
type StationError struct {
	StationID string `json:"stationId"`
	Kind      string `json:"kind"`
	Message   string `json:"error"`
}

// StationCheckResult aggregates one monitor run.
type StationCheckResult struct {
	RunID           string           `json:"runId"`
	CheckedAt       time.Time        `json:"checkedAt"`
	Checked         int              `json:"checked"`
	Skipped         int              `json:"skipped"`
	OfflineStations []OfflineStation `json:"offlineStations"`
	Errors          []StationError   `json:"errors"`
	Notified        bool             `json:"notified"`
}
