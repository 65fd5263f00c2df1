// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/medassist-labs/medassist/internal/domain"
)

// Repository defines the interface for persisting the medication schedule,
// the adherence log, and device profiles. The workflow and the HTTP shell
// depend on this interface, never on a concrete storage mechanism.
type Repository interface {
	// ListMedications retrieves the full medication schedule in seed order.
	ListMedications(ctx context.Context) ([]domain.Medication, error)

	// GetMedication retrieves a single medication by ID. Returns nil when
	// the medication does not exist.
	GetMedication(ctx context.Context, id string) (*domain.Medication, error)

	// SeedMedications inserts the given medications if the schedule is empty.
	// It is a no-op when any medications already exist.
	SeedMedications(ctx context.Context, meds []domain.Medication) error

	// SetReferenceImage updates the stored reference image for a medication.
	SetReferenceImage(ctx context.Context, medicationID, imageURL string) error

	// AppendEntry durably appends one adherence log entry.
	AppendEntry(ctx context.Context, entry *domain.AdherenceEntry) error

	// ListEntries retrieves all adherence entries for a device, newest first.
	ListEntries(ctx context.Context, deviceID string) ([]domain.AdherenceEntry, error)

	// DeleteEntries removes all adherence entries for a device and returns
	// the number of rows removed.
	DeleteEntries(ctx context.Context, deviceID string) (int64, error)

	// GetProfile retrieves the profile for a device. Returns nil when no
	// profile exists yet.
	GetProfile(ctx context.Context, deviceID string) (*domain.Profile, error)

	// UpsertProfile creates or updates a device profile.
	UpsertProfile(ctx context.Context, profile *domain.Profile) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
