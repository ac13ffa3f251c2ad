package http_handlers

import (
	"strings"
	"time"
)

// Accepted startDate/endDate layouts: "dd-MM-yyyy hh:mm a" and "dd-MM-yyyy".
// Day, month and hour may be written with one digit.
var dateLayouts = []string{
	"2-1-2006 3:04 PM",
	"2-1-2006",
}

// parseDateBound parses a listing bound and snaps it to the start (or end)
// of its day in UTC. Unparseable input yields nil so the bound is ignored.
func parseDateBound(raw string, endOfDay bool) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, strings.ToUpper(raw), time.UTC)
		if err != nil {
			continue
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if endOfDay {
			day = day.Add(24*time.Hour - time.Millisecond)
		}
		return &day
	}
	return nil
}
