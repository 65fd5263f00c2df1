package domain

import (
	"testing"
	"time"
)

func TestRefillsDueBoundaries(t *testing.T) {
	today := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(DateLayout)
	}

	meds := []Medication{
		{ID: "a", RefillDate: day(0)},
		{ID: "b", RefillDate: day(3)},
		{ID: "c", RefillDate: day(7)},
		{ID: "d", RefillDate: day(8)},
		{ID: "e", RefillDate: day(-1)},
	}

	due := RefillsDue(meds, today, 7)

	want := []string{"a", "b", "c"}
	if len(due) != len(want) {
		t.Fatalf("expected %d medications due, got %d", len(want), len(due))
	}
	for i, id := range want {
		if due[i].ID != id {
			t.Errorf("due[%d]: expected %q, got %q", i, id, due[i].ID)
		}
	}
}

func TestRefillDueTimeOfDayIrrelevant(t *testing.T) {
	// A refill date exactly windowDays out must count even late in the day.
	today := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	med := Medication{RefillDate: "2025-06-17"}

	if !med.RefillDue(today, 7) {
		t.Error("refill on the last day of the window should be due")
	}
}

func TestRefillWindowAcrossDSTTransitions(t *testing.T) {
	// The filter runs on server-local time, so the window must hold its
	// calendar boundaries even when a DST transition falls inside it.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name  string
		today time.Time
	}{
		// 2026-03-08: clocks spring forward, the window spans 167 elapsed hours.
		{"spring forward", time.Date(2026, 3, 7, 12, 0, 0, 0, loc)},
		// 2026-11-01: clocks fall back, the window spans 169 elapsed hours.
		{"fall back", time.Date(2026, 10, 31, 12, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := func(offset int) string {
				return tt.today.AddDate(0, 0, offset).Format(DateLayout)
			}

			lastDay := Medication{RefillDate: day(7)}
			if !lastDay.RefillDue(tt.today, 7) {
				t.Errorf("refill on today+7 (%s) must be inside the window", lastDay.RefillDate)
			}
			dayAfter := Medication{RefillDate: day(8)}
			if dayAfter.RefillDue(tt.today, 7) {
				t.Errorf("refill on today+8 (%s) must be outside the 7-day window", dayAfter.RefillDate)
			}
			yesterday := Medication{RefillDate: day(-1)}
			if yesterday.RefillDue(tt.today, 7) {
				t.Errorf("refill on today-1 (%s) must be outside the window", yesterday.RefillDate)
			}
		})
	}
}

func TestRefillDueUnparseableDate(t *testing.T) {
	med := Medication{RefillDate: "June 15th"}
	if med.RefillDue(time.Now(), 7) {
		t.Error("unparseable refill date should never be due")
	}
}

func TestAdherenceStatusValid(t *testing.T) {
	for _, s := range []AdherenceStatus{StatusTaken, StatusMissed, StatusSkipped} {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if AdherenceStatus("confirmed").Valid() {
		t.Error("unknown status should be invalid")
	}
}
