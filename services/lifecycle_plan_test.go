package services

import (
	"testing"

	"monkArcAPI/internal/lifecycle"
	"monkArcAPI/internal/types/journey"
)

func activeJourney(lastCheckIn string) *journey.Journey {
	j := &journey.Journey{
		Status:    lifecycle.StatusActive,
		StartDate: date("2024-01-01"),
	}
	if lastCheckIn != "" {
		d := date(lastCheckIn)
		j.LastCheckInDate = &d
	}
	return j
}

func TestDaysSinceLastActivity(t *testing.T) {
	tests := []struct {
		name        string
		lastCheckIn string
		today       string
		want        int
	}{
		{"checked in today", "2024-01-10", "2024-01-10", 0},
		{"three day gap", "2024-01-10", "2024-01-13", 3},
		{"never checked in, ages from start", "", "2024-01-04", 3},
		{"check-in recorded for a future date", "2024-01-15", "2024-01-10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := activeJourney(tt.lastCheckIn)
			if got := daysSinceLastActivity(j, date(tt.today)); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

// The freeze and death thresholds as the sweep sees them: active holds
// through day 2, freezes on day 3, dies on day 7.
func TestPlanTransitionThresholds(t *testing.T) {
	tests := []struct {
		days       int
		wantNext   lifecycle.Status
		wantChange bool
	}{
		{0, lifecycle.StatusActive, false},
		{2, lifecycle.StatusActive, false},
		{3, lifecycle.StatusFrozen, true},
		{6, lifecycle.StatusFrozen, true},
		{7, lifecycle.StatusDead, true},
		{30, lifecycle.StatusDead, true},
	}

	for _, tt := range tests {
		j := activeJourney("2024-01-10")
		today := date("2024-01-10").AddDate(0, 0, tt.days)
		next, change := planTransition(j, today)
		if next != tt.wantNext || change != tt.wantChange {
			t.Errorf("days=%d: got (%s, %v), want (%s, %v)", tt.days, next, change, tt.wantNext, tt.wantChange)
		}
	}
}

// A journey the sweep already froze stays frozen until day 7; a second pass
// on the same day must be a no-op.
func TestPlanTransitionIdempotent(t *testing.T) {
	j := activeJourney("2024-01-10")
	j.Status = lifecycle.StatusFrozen

	next, change := planTransition(j, date("2024-01-14"))
	if change {
		t.Errorf("frozen journey at day 4 re-planned a write to %s", next)
	}

	next, change = planTransition(j, date("2024-01-17"))
	if !change || next != lifecycle.StatusDead {
		t.Errorf("frozen journey at day 7: got (%s, %v), want (dead, true)", next, change)
	}
}

func TestPlanTransitionPausedExempt(t *testing.T) {
	j := activeJourney("2024-01-01")
	j.Status = lifecycle.StatusPaused

	if _, change := planTransition(j, date("2024-03-01")); change {
		t.Error("paused journeys must not age")
	}
}

func TestPlanTransitionCompletedTerminal(t *testing.T) {
	j := activeJourney("2024-01-01")
	j.Status = lifecycle.StatusCompleted

	if _, change := planTransition(j, date("2024-06-01")); change {
		t.Error("completed is terminal")
	}
}

// Extended journeys age under the same thresholds as active ones.
func TestPlanTransitionExtendedAges(t *testing.T) {
	j := activeJourney("2024-01-10")
	j.Status = lifecycle.StatusExtended

	next, change := planTransition(j, date("2024-01-13"))
	if !change || next != lifecycle.StatusFrozen {
		t.Errorf("extended at day 3: got (%s, %v), want (frozen, true)", next, change)
	}
}
