// Package hours decides whether a station is inside its local operating window.
package hours

import (
	"errors"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"powerbank/backend/services/stations-service/internal/models"
)

// DefaultTimezone applies when a station has no usable timezone.
const DefaultTimezone = "America/Vancouver"

var errBadClock = errors.New("hours: expected HH:MM")

// Location resolves tz, falling back to DefaultTimezone. ok is false when neither loads.
func Location(tz string) (*time.Location, bool) {
	if tz = strings.TrimSpace(tz); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc, true
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// ParseClock turns "HH:MM" into fractional hours.
func ParseClock(s string) (float64, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, errBadClock
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, errBadClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, errBadClock
	}
	return float64(h) + float64(m)/60, nil
}

// Today returns the station's window for the local weekday at instant.
func Today(station models.Station, instant time.Time) (models.DayHours, bool) {
	loc, ok := Location(station.Timezone)
	if !ok {
		return models.DayHours{}, false
	}
	return station.Hours[instant.In(loc).Weekday()], true
}

// IsOpen reports whether station is open at instant. Anything it cannot evaluate is closed.
func IsOpen(station models.Station, instant time.Time) bool {
	loc, ok := Location(station.Timezone)
	if !ok {
		return false
	}
	local := instant.In(loc)

	day := station.Hours[local.Weekday()]
	if day.Closed() {
		return false
	}

	start, err := ParseClock(day.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(day.End)
	if err != nil {
		return false
	}

	now := float64(local.Hour()) + float64(local.Minute())/60
	if end < start {
		return now >= start || now < end
	}
	return now >= start && now < end
}
