// Package timefmt holds the duration and summary-window formatting shared by
// clock-out replies, status snapshots, and the weekly rollup.
package timefmt

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatHours renders a fractional-hour value as "<hours>h <minutes>m".
// Minutes are rounded; a value that rounds to a full hour carries into the
// hour component, so 1.999 renders as "2h 0m" rather than "1h 60m".
func FormatHours(value float64) string {
	hours := int(math.Floor(value))
	minutes := int(math.Round((value - math.Floor(value)) * 60))
	if minutes >= 60 {
		hours++
		minutes -= 60
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// WeekWindow returns the presentational label window for a weekly summary
// fired at now: seven calendar days back at local midnight through the firing
// time. The window labels the summary only; it never filters records.
func WeekWindow(now time.Time) (start, end time.Time) {
	back := now.AddDate(0, 0, -7)
	start = time.Date(back.Year(), back.Month(), back.Day(), 0, 0, 0, 0, back.Location())
	return start, now
}

// DayLabel renders a date as an upper-case "2 JANUARY" style label for the
// weekly summary title.
func DayLabel(t time.Time) string {
	return strings.ToUpper(t.Format("2 January"))
}
