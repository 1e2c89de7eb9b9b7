package arcstats

import (
	"math"
	"time"

	"monkArcAPI/internal/datemath"
	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/internal/types/journey"
)

// Summary is the derived-stat payload for a completed journey's Arc page.
type Summary struct {
	JourneyDuration int `json:"journey_duration"`
	MissedDays      int `json:"missed_days"`
	CompletionRate  int `json:"completion_rate"`
	TotalCheckIns   int `json:"total_check_ins"`
	TotalWords      int `json:"total_words"`
	TotalCommits    int `json:"total_commits"`
	LongestStreak   int `json:"longest_streak"`
	PausedDays      int `json:"paused_days"`
	ExtendedDays    int `json:"extended_days"`
	TimesExtended   int `json:"times_extended"`
	OriginalTarget  int `json:"original_target"`
}

// JourneyDuration is the inclusive day count from start to completion.
// Never less than 1.
func JourneyDuration(startDate, completedAt time.Time) int {
	d := datemath.DaysBetween(startDate, completedAt) + 1
	if d < 1 {
		return 1
	}
	return d
}

// MissedDays counts the expected-but-skipped days. Paused days are excluded
// from the denominator: no check-in was expected during a pause. Clamped at
// zero, so over-checked or heavily paused journeys never go negative.
func MissedDays(journeyDuration, pausedDays, totalCheckIns int) int {
	missed := (journeyDuration - pausedDays) - totalCheckIns
	if missed < 0 {
		return 0
	}
	return missed
}

// CompletionRate is the percentage of non-paused days with a check-in,
// rounded to the nearest whole percent. The denominator is clamped to 1 so a
// journey paused for its entire duration does not divide by zero.
func CompletionRate(totalCheckIns, journeyDuration, pausedDays int) int {
	activeDays := journeyDuration - pausedDays
	if activeDays < 1 {
		activeDays = 1
	}
	rate := int(math.Round(100 * float64(totalCheckIns) / float64(activeDays)))
	if rate < 0 {
		return 0
	}
	return rate
}

// ExtendedDays is how far past the original target the journey ran. Zero for
// journeys never extended.
func ExtendedDays(journeyDuration, originalTarget int, isExtended bool) int {
	if !isExtended {
		return 0
	}
	extra := journeyDuration - originalTarget
	if extra < 0 {
		return 0
	}
	return extra
}

func TotalCommits(checkIns []*checkin.CheckIn) int {
	total := 0
	for _, c := range checkIns {
		total += c.CommitCount
	}
	return total
}

func TotalWords(checkIns []*checkin.CheckIn) int {
	total := 0
	for _, c := range checkIns {
		total += c.WordCount
	}
	return total
}

// Summarize computes the full Arc page summary for a completed journey.
// Callers are responsible for only passing completed journeys; CompletedAt
// falls back to the last check-in date, then the start date, so the
// functions stay total either way.
func Summarize(j *journey.Journey, checkIns []*checkin.CheckIn) *Summary {
	end := j.StartDate
	if j.LastCheckInDate != nil {
		end = *j.LastCheckInDate
	}
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}

	duration := JourneyDuration(j.StartDate, end)

	return &Summary{
		JourneyDuration: duration,
		MissedDays:      MissedDays(duration, j.PausedDays, j.TotalCheckIns),
		CompletionRate:  CompletionRate(j.TotalCheckIns, duration, j.PausedDays),
		TotalCheckIns:   j.TotalCheckIns,
		TotalWords:      TotalWords(checkIns),
		TotalCommits:    TotalCommits(checkIns),
		LongestStreak:   j.LongestStreak,
		PausedDays:      j.PausedDays,
		ExtendedDays:    ExtendedDays(duration, j.OriginalTarget, j.IsExtended),
		TimesExtended:   j.TimesExtended,
		OriginalTarget:  j.OriginalTarget,
	}
}
