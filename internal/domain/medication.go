// Package domain contains core domain types for the MedAssist application.
package domain

import (
	"time"
)

// DateLayout is the wire format for refill dates.
const DateLayout = "2006-01-02"

// Medication represents one prescribed medication on the daily schedule.
// Medications are seeded at startup and immutable at runtime.
type Medication struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Dose                 string   `json:"dose"`
	Form                 string   `json:"form"`
	Times                []string `json:"times"` // "HH:MM", ordered, recurring daily
	ContainerDescription string   `json:"container_description"`
	RefillDate           string   `json:"refill_date"` // DateLayout
	ImageURL             string   `json:"image_url,omitempty"`
	Instructions         string   `json:"instructions,omitempty"`
}

// RefillDue reports whether the medication's refill date falls inside the
// pickup window [today, today+windowDays], inclusive on both ends. The
// window is calendar days: DST transitions inside it must not shift the
// boundary, so the comparison never goes through elapsed hours.
func (m *Medication) RefillDue(today time.Time, windowDays int) bool {
	refill, err := time.ParseInLocation(DateLayout, m.RefillDate, today.Location())
	if err != nil {
		return false
	}
	start := truncateToDay(today)
	end := start.AddDate(0, 0, windowDays)
	return !refill.Before(start) && !refill.After(end)
}

// RefillsDue filters medications whose refill dates fall inside the window,
// preserving the input order.
func RefillsDue(meds []Medication, today time.Time, windowDays int) []Medication {
	var due []Medication
	for _, m := range meds {
		if m.RefillDue(today, windowDays) {
			due = append(due, m)
		}
	}
	return due
}

func truncateToDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
