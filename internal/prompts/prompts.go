package prompts

import (
	"time"

	"monkArcAPI/internal/datemath"
)

// dailyPrompts rotate by calendar day so everyone sees the same prompt on
// the same date.
var dailyPrompts = []string{
	"What did you actually finish today?",
	"What was the hardest part of today's session?",
	"What would you tell yesterday's you before starting?",
	"What did you learn that you didn't expect to?",
	"What almost made you skip today?",
	"What's one thing you'd redo from today's work?",
	"Where did today's progress feel easiest?",
	"What's blocking tomorrow, and what's the first move?",
	"What did you cut or say no to today?",
	"What surprised you about your own pace today?",
	"If today was your last check-in, what would be unfinished?",
	"What small win is worth writing down before you forget?",
	"What took longer than it should have, and why?",
	"What did you avoid today that you shouldn't have?",
}

// ForDate returns the prompt for the given calendar day.
func ForDate(date time.Time) string {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	days := datemath.DaysBetween(epoch, date)
	idx := days % len(dailyPrompts)
	if idx < 0 {
		idx += len(dailyPrompts)
	}
	return dailyPrompts[idx]
}
