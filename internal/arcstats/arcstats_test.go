package arcstats

import (
	"testing"
	"time"

	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/internal/types/journey"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestJourneyDuration(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"one week inclusive", "2024-01-01", "2024-01-07", 7},
		{"forty five days", "2024-01-01", "2024-02-14", 45},
		{"end before start clamps", "2024-01-10", "2024-01-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JourneyDuration(date(tt.start), date(tt.end)); got != tt.want {
				t.Errorf("JourneyDuration = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMissedDays(t *testing.T) {
	tests := []struct {
		name                              string
		duration, pausedDays, totalChecks int
		want                              int
	}{
		{"perfect journey", 30, 0, 30, 0},
		{"five missed", 30, 0, 25, 5},
		{"pause excused", 30, 5, 25, 0},
		{"pause partly excused", 30, 3, 25, 2},
		{"paused longer than duration clamps", 10, 20, 0, 0},
		{"over-checked clamps", 10, 0, 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MissedDays(tt.duration, tt.pausedDays, tt.totalChecks); got != tt.want {
				t.Errorf("MissedDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name                              string
		totalChecks, duration, pausedDays int
		want                              int
	}{
		{"full rate", 30, 30, 0, 100},
		{"half rate", 15, 30, 0, 50},
		{"rounds nearest", 2, 3, 0, 67},
		{"pause shrinks denominator", 20, 30, 10, 100},
		{"paused whole duration", 0, 10, 10, 0},
		{"paused whole duration with checks", 3, 10, 10, 300},
		{"zero everything", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionRate(tt.totalChecks, tt.duration, tt.pausedDays); got != tt.want {
				t.Errorf("CompletionRate = %d, want %d", got, tt.want)
			}
			if got := CompletionRate(tt.totalChecks, tt.duration, tt.pausedDays); got < 0 {
				t.Errorf("CompletionRate = %d, must never be negative", got)
			}
		})
	}
}

func TestExtendedDays(t *testing.T) {
	tests := []struct {
		name                     string
		duration, originalTarget int
		isExtended               bool
		want                     int
	}{
		{"not extended", 45, 30, false, 0},
		{"extended fifteen past original", 45, 30, true, 15},
		{"extended but finished early", 25, 30, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtendedDays(tt.duration, tt.originalTarget, tt.isExtended); got != tt.want {
				t.Errorf("ExtendedDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	startDate := date("2024-01-01")
	completedAt := date("2024-02-14") // 45 days inclusive

	j := &journey.Journey{
		StartDate:      startDate,
		CompletedAt:    &completedAt,
		TotalCheckIns:  40,
		LongestStreak:  22,
		PausedDays:     2,
		IsExtended:     true,
		TimesExtended:  1,
		OriginalTarget: 30,
		TargetCheckIns: 40,
	}

	notes := "ran benchmarks"
	checkIns := []*checkin.CheckIn{
		{WordCount: 25, CommitCount: 3},
		{WordCount: 40, CommitCount: 0, Notes: &notes},
		{WordCount: 10, CommitCount: 7},
	}

	s := Summarize(j, checkIns)

	if s.JourneyDuration != 45 {
		t.Errorf("JourneyDuration = %d, want 45", s.JourneyDuration)
	}
	if s.MissedDays != 3 { // (45-2) - 40
		t.Errorf("MissedDays = %d, want 3", s.MissedDays)
	}
	if s.CompletionRate != 93 { // round(100*40/43)
		t.Errorf("CompletionRate = %d, want 93", s.CompletionRate)
	}
	if s.TotalWords != 75 {
		t.Errorf("TotalWords = %d, want 75", s.TotalWords)
	}
	if s.TotalCommits != 10 {
		t.Errorf("TotalCommits = %d, want 10", s.TotalCommits)
	}
	if s.ExtendedDays != 15 { // 45 - 30
		t.Errorf("ExtendedDays = %d, want 15", s.ExtendedDays)
	}
}

// Original target 30, extended once by 10, duration 45 -> extendedDays 15.
func TestSummarizeExtendedExample(t *testing.T) {
	if got := ExtendedDays(45, 30, true); got != 15 {
		t.Fatalf("ExtendedDays(45, 30, true) = %d, want 15", got)
	}
}

func TestSummarizeFallsBackWithoutCompletedAt(t *testing.T) {
	last := date("2024-01-10")
	j := &journey.Journey{
		StartDate:       date("2024-01-01"),
		LastCheckInDate: &last,
		TotalCheckIns:   10,
	}

	s := Summarize(j, nil)
	if s.JourneyDuration != 10 {
		t.Errorf("JourneyDuration = %d, want 10 (falls back to last check-in)", s.JourneyDuration)
	}
	if s.MissedDays != 0 {
		t.Errorf("MissedDays = %d, want 0", s.MissedDays)
	}
}
