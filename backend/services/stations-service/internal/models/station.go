package models

import "time"

// DayHours is one weekday's opening window in station-local "HH:MM". Empty means closed.
type DayHours struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Closed reports whether either bound is missing.
func (d DayHours) Closed() bool {
	return d.Start == "" || d.End == ""
}

// WeekHours is indexed by time.Weekday (Sunday = 0).
type WeekHours [7]DayHours

// Station is a vendor-operated power-bank station.
type Station struct {
	ID          string     `json:"stationId" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Timezone    string     `json:"timezone" yaml:"timezone"`
	Hours       WeekHours  `json:"hours" yaml:"hours"`
	Online      *bool      `json:"online,omitempty" yaml:"-"`
	LastChecked *time.Time `json:"lastChecked,omitempty" yaml:"-"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"-"`
}
