package domain

import (
	"time"
)

// AdherenceStatus describes how a scheduled dose was resolved.
type AdherenceStatus string

const (
	// StatusTaken records a dose the patient confirmed taking.
	StatusTaken AdherenceStatus = "taken"
	// StatusMissed records a dose that was never confirmed.
	StatusMissed AdherenceStatus = "missed"
	// StatusSkipped records a dose the patient explicitly skipped.
	StatusSkipped AdherenceStatus = "skipped"
)

// Valid reports whether the status is one of the known values.
func (s AdherenceStatus) Valid() bool {
	switch s {
	case StatusTaken, StatusMissed, StatusSkipped:
		return true
	}
	return false
}

// AdherenceEntry is one append-only record of a dose-taking event.
// Entries are never mutated after creation; display order is newest first.
type AdherenceEntry struct {
	ID           string          `json:"id"`
	DeviceID     string          `json:"-"`
	MedicationID string          `json:"medication_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Status       AdherenceStatus `json:"status"`
	Verified     bool            `json:"verified"`
}
