package notify

import (
	"fmt"
	"strings"
	"time"

	"powerbank/backend/services/stations-service/internal/hours"
	"powerbank/backend/services/stations-service/internal/models"
)

// Report is the rendered offline-station message.
type Report struct {
	Subject         string                  `json:"subject"`
	Body            string                  `json:"body"`
	Recipients      []string                `json:"recipients"`
	RunID           string                  `json:"runId"`
	CheckedAt       time.Time               `json:"checkedAt"`
	OfflineStations []models.OfflineStation `json:"offlineStations"`
	Errors          []models.StationError   `json:"errors"`
}

// FormatReport renders result for recipients.
func FormatReport(result *models.StationCheckResult, recipients []string) Report {
	var b strings.Builder
	fmt.Fprintf(&b, "Offline stations (%d):\n", len(result.OfflineStations))
	for _, st := range result.OfflineStations {
		fmt.Fprintf(&b, "- %s", st.StationID)
		if st.Title != "" {
			fmt.Fprintf(&b, " %q", st.Title)
		}
		fmt.Fprintf(&b, " [%s] tz=%s hours=%s last checked %s\n",
			st.Vendor, st.Timezone, todayWindow(st), st.LastChecked.UTC().Format(time.RFC3339))
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s (%s): %s\n", e.StationID, e.Kind, e.Message)
		}
	}

	return Report{
		Subject:         fmt.Sprintf("[stations] %d offline station(s) at %s", len(result.OfflineStations), result.CheckedAt.UTC().Format(time.RFC3339)),
		Body:            b.String(),
		Recipients:      append([]string(nil), recipients...),
		RunID:           result.RunID,
		CheckedAt:       result.CheckedAt,
		OfflineStations: result.OfflineStations,
		Errors:          result.Errors,
	}
}

func todayWindow(st models.OfflineStation) string {
	day, ok := hours.Today(models.Station{Timezone: st.Timezone, Hours: st.Hours}, st.LastChecked)
	if !ok || day.Closed() {
		return "closed"
	}
	return day.Start + "-" + day.End
}
