// Package utils provides shared utility functions
package utils

import (
	"fmt"
	"math"
	"time"
)

// FormatFileSize converts a byte count to the size string the drive displays
// (e.g. "512 B", "1.5 KB", "12.0 MB"). Sizes never step up past megabytes.
func FormatFileSize(size int64) string {
	const unit = 1024
	switch {
	case size < 0:
		return "0 B"
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	}
}

// BytesToMB converts bytes to megabytes
func BytesToMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// RoundTo rounds v to the given number of decimals
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// FormatTimestamp renders t in local time as dd-mm-yy hh:mm:ss
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("02-01-06 15:04:05")
}

// RelativeDay labels t relative to now by calendar day in local wall-clock time:
// "Today", "Yesterday", "N days ago" up to a week, then the calendar date.
func RelativeDay(t, now time.Time) string {
	days := calendarDaysBetween(t, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Local().Format("1/2/2006")
	}
}

func calendarDaysBetween(from, to time.Time) int {
	from, to = from.Local(), to.Local()
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local)
	// Round absorbs the 23h/25h days around DST switches.
	return int(math.Round(b.Sub(a).Hours() / 24))
}
