package utils

import (
	"fmt"
	"time"
)

// ReferenceTimezone is the fixed zone that decides what "today" means for
// watering-freshness comparisons.
const ReferenceTimezone = "Asia/Bangkok"

// FormatYMD renders an instant as a YYYY-MM-DD calendar date as observed in
// the given IANA timezone. An unknown zone is a configuration error and is
// returned as-is rather than papered over.
func FormatYMD(t time.Time, tz string) (string, error) {
	if tz == "" {
		tz = ReferenceTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return t.In(loc).Format("2006-01-02"), nil
}
