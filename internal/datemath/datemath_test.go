package datemath

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{"same day", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC), 0},
		{"one day", time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), 1},
		{"four days", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 4},
		{"across month", time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), 3},
		{"leap february", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2},
		{"reversed", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 6, 15, 18, 45, 12, 999, time.UTC)
	got := StartOfDay(in)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay(%v) = %v, want %v", in, got, want)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 6, 15, 0, 1, 0, 0, time.UTC)
	b := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	c := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Errorf("expected %v and %v to be the same day", a, b)
	}
	if SameDay(b, c) {
		t.Errorf("expected %v and %v to be different days", b, c)
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-07")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if DayKey(d) != "2024-01-07" {
		t.Errorf("DayKey = %s, want 2024-01-07", DayKey(d))
	}

	if _, err := ParseDate("07/01/2024"); err == nil {
		t.Error("expected error for invalid date format")
	}
}
