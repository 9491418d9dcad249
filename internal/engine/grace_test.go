package engine

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.January, 6, hour, minute, 0, 0, time.UTC)
}

func TestGraceWindowBasics(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		minute int
		now    time.Time
		grace  int
		want   bool
	}{
		{"exact", 9, 0, at(9, 0), 60, true},
		{"upper boundary inclusive", 9, 0, at(10, 0), 60, true},
		{"just past upper", 9, 0, at(10, 1), 60, false},
		{"lower boundary inclusive", 9, 0, at(8, 0), 60, true},
		{"just before lower", 9, 0, at(7, 59), 60, false},
		{"zero grace exact minute", 9, 0, at(9, 0), 0, true},
		{"zero grace one minute off", 9, 0, at(9, 1), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOnTime(tc.hour, tc.minute, tc.now, tc.grace); got != tc.want {
				t.Fatalf("IsOnTime(%02d:%02d, %s, %d)=%v, want %v",
					tc.hour, tc.minute, tc.now.Format("15:04"), tc.grace, got, tc.want)
			}
		})
	}
}

func TestGraceWindowWrapsMidnight(t *testing.T) {
	// Task at 23:30 with an hour of grace: 00:15 is on time, 00:45 is not.
	if !IsOnTime(23, 30, at(0, 15), 60) {
		t.Fatalf("00:15 should be inside 23:30±60")
	}
	if IsOnTime(23, 30, at(0, 45), 60) {
		t.Fatalf("00:45 should be outside 23:30±60")
	}
	if !IsOnTime(23, 30, at(0, 30), 60) {
		t.Fatalf("00:30 boundary should be inside 23:30±60")
	}

	// Symmetric: an early-morning task reached from the previous evening.
	if !IsOnTime(0, 15, at(23, 30), 60) {
		t.Fatalf("23:30 should be inside 00:15±60")
	}
	if IsOnTime(0, 15, at(22, 30), 60) {
		t.Fatalf("22:30 should be outside 00:15±60")
	}
}

func TestGraceWindowDegenerate(t *testing.T) {
	if !IsOnTime(12, 0, at(0, 0), 720) {
		t.Fatalf("grace covering half the day accepts everything")
	}
	if IsOnTime(9, 0, at(9, 30), -5) {
		t.Fatalf("negative grace clamps to 0, so 09:30 is off for a 09:00 task")
	}
}
