package humantime

import (
	"fmt"
	"strings"
)

// unit is one step of the greedy decomposition
type unit struct {
	singular string
	plural   string
	seconds  int
}

var units = []unit{
	{"week", "weeks", 604800},
	{"day", "days", 86400},
	{"hour", "hours", 3600},
	{"minute", "minutes", 60},
	{"second", "seconds", 1},
}

// Format converts a number of seconds into a phrase such as
// "1 hour, 1 minute, and 1 second". Negative values format as zero.
func Format(seconds int) string {
	if seconds <= 0 {
		return "0 seconds"
	}

	var parts []string
	for _, u := range units {
		value := seconds / u.seconds
		if value == 0 {
			continue
		}
		seconds -= value * u.seconds

		name := u.plural
		if value == 1 {
			name = u.singular
		}
		parts = append(parts, fmt.Sprintf("%d %s", value, name))
	}

	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

// Estimate renders a short per-workload estimate: "45 s" below a minute,
// "m:ss" otherwise.
func Estimate(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	if minutes < 1 {
		return fmt.Sprintf("%d s", seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds%60)
}
