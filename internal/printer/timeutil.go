package printer

import (
	"fmt"
	"time"
)

// TimeLeft returns a human-readable string of the time left until a deadline.
// Examples: "-", "in 5 minutes", "in 3 days", "2 hours ago".
func TimeLeft(deadline, now time.Time) string {
	if deadline.IsZero() {
		return "-"
	}

	diff := deadline.Sub(now)
	if diff < 0 {
		return humanDuration(-diff) + " ago"
	}
	return "in " + humanDuration(diff)
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return plural(int(d.Seconds()), "second")
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC, "-" when not set.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
