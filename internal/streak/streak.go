package streak

import (
	"time"

	"monkArcAPI/internal/datemath"
)

// Compute returns the consecutive-day streak ending at newDate, given the
// dates of all existing check-ins for the journey. It walks backward from the
// day before newDate and stops at the first day without a check-in, so a
// check-in today after a gap yields 1 no matter how long the history is.
//
// Callers must reject a duplicate newDate before calling; the result for a
// date that is already checked in is unspecified.
func Compute(existing []time.Time, newDate time.Time) int {
	if len(existing) == 0 {
		return 1
	}

	seen := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		seen[datemath.DayKey(d)] = struct{}{}
	}

	count := 1
	for d := datemath.StartOfDay(newDate).AddDate(0, 0, -1); ; d = d.AddDate(0, 0, -1) {
		if _, ok := seen[datemath.DayKey(d)]; !ok {
			break
		}
		count++
	}

	return count
}
