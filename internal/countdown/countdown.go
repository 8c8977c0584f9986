// Package countdown derives human-readable time-remaining text from
// absolute reset timestamps and owns the redraw tick that keeps it
// fresh between data refreshes.
package countdown

import (
	"fmt"
	"time"
)

// Duration renders a remaining duration with its two largest applicable
// units: days+hours, hours+minutes, minutes+seconds, or bare seconds.
// Anything at or below zero is "now".
func Duration(d time.Duration) string {
	if d <= 0 {
		return "now"
	}

	secs := int64(d / time.Second)
	days := secs / 86400
	hours := (secs % 86400) / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Until renders the remaining time from now to t.
func Until(t, now time.Time) string {
	return Duration(t.Sub(now))
}

// Ago renders how long ago t was, in the same units as Duration.
func Ago(t, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed <= 0 {
		return "just now"
	}
	return Duration(elapsed) + " ago"
}
