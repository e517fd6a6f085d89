package attendance

import (
	"strconv"
	"strings"
)

// Classify returns StatusLate when checkIn is strictly after shiftStart plus
// graceMinutes, and StatusPresent otherwise. Missing or malformed times
// are treated as on time.
func Classify(checkIn, shiftStart string, graceMinutes int) Status {
	in, ok := ClockMinutes(checkIn)
	if !ok {
		return StatusPresent
	}
	start, ok := ClockMinutes(shiftStart)
	if !ok {
		return StatusPresent
	}
	if in > start+graceMinutes {
		return StatusLate
	}
	return StatusPresent
}

// ClockMinutes converts "HH:MM" into minutes since midnight.
func ClockMinutes(clock string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(clock), ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || len(m) != 2 {
		return 0, false
	}
	return hours*60 + minutes, true
}
