package attendance

import "fmt"

const zeroDuration = "0.0"

// Duration returns the hours between start and end on the same day, to one
// decimal place. Missing or malformed times, and an end before the start,
// yield "0.0". Overnight shifts are not modeled.
func Duration(start, end string) string {
	if !hasTime(start) || !hasTime(end) {
		return zeroDuration
	}
	from, ok := ClockMinutes(start)
	if !ok {
		return zeroDuration
	}
	to, ok := ClockMinutes(end)
	if !ok || to < from {
		return zeroDuration
	}
	return fmt.Sprintf("%.1f", float64(to-from)/60)
}
