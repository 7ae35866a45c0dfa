package cli

import (
	"fmt"
	"time"
)

// FormatLatency formats a duration for transcript display.
func FormatLatency(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		mins := int(d.Minutes())
		return fmt.Sprintf("%dm%.1fs", mins, d.Seconds()-float64(mins*60))
	}
}

// FormatLapTime formats a lap time in seconds as m:ss.mmm, the way a pit
// board would show it.
func FormatLapTime(seconds float64) string {
	if seconds <= 0 {
		return "-:--.---"
	}
	mins := int(seconds) / 60
	rest := seconds - float64(mins*60)
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// FormatBytes formats a byte count to a human readable string.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
