package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	appendMu sync.Mutex // serializes adherence appends to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS medications (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dose TEXT NOT NULL,
		form TEXT NOT NULL,
		times_json TEXT NOT NULL,
		container_description TEXT NOT NULL,
		refill_date TEXT NOT NULL,
		image_url TEXT,
		instructions TEXT,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS adherence_log (
		id TEXT PRIMARY KEY,
		device_id TEXT NOT NULL,
		medication_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		status TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_adherence_device ON adherence_log(device_id, timestamp);

	CREATE TABLE IF NOT EXISTS profiles (
		device_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		authenticated INTEGER NOT NULL DEFAULT 0,
		consents_json TEXT NOT NULL,
		preferences_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListMedications retrieves the full medication schedule in seed order.
func (s *SQLiteStore) ListMedications(ctx context.Context) ([]domain.Medication, error) {
	query := `
		SELECT id, name, dose, form, times_json, container_description,
		       refill_date, image_url, instructions
		FROM medications ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Debug("close medication rows", "error", closeErr)
		}
	}()

	var meds []domain.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, *med)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medications: %w", err)
	}
	return meds, nil
}

// GetMedication retrieves a single medication by ID.
func (s *SQLiteStore) GetMedication(ctx context.Context, id string) (*domain.Medication, error) {
	query := `
		SELECT id, name, dose, form, times_json, container_description,
		       refill_date, image_url, instructions
		FROM medications WHERE id = ?`

	med, err := scanMedication(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return med, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (*domain.Medication, error) {
	var med domain.Medication
	var timesJSON string
	var imageURL, instructions sql.NullString

	err := row.Scan(
		&med.ID, &med.Name, &med.Dose, &med.Form, &timesJSON,
		&med.ContainerDescription, &med.RefillDate, &imageURL, &instructions,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan medication row: %w", err)
	}

	if err := json.Unmarshal([]byte(timesJSON), &med.Times); err != nil {
		return nil, fmt.Errorf("decode medication times: %w", err)
	}
	med.ImageURL = imageURL.String
	med.Instructions = instructions.String

	return &med, nil
}

// SeedMedications inserts the given medications if the schedule is empty.
func (s *SQLiteStore) SeedMedications(ctx context.Context, meds []domain.Medication) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medications`).Scan(&count); err != nil {
		return fmt.Errorf("count medications: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
	INSERT INTO medications (id, name, dose, form, times_json, container_description,
		refill_date, image_url, instructions, position)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, med := range meds {
		timesJSON, err := json.Marshal(med.Times)
		if err != nil {
			return fmt.Errorf("encode medication times: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			med.ID, med.Name, med.Dose, med.Form, string(timesJSON),
			med.ContainerDescription, med.RefillDate,
			nullable(med.ImageURL), nullable(med.Instructions), i,
		); err != nil {
			return fmt.Errorf("insert medication %s: %w", med.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	slog.Info("Medication schedule seeded", "count", len(meds))
	return nil
}

// SetReferenceImage updates the stored reference image for a medication.
func (s *SQLiteStore) SetReferenceImage(ctx context.Context, medicationID, imageURL string) error {
	query := `UPDATE medications SET image_url = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, imageURL, medicationID)
	if err != nil {
		return fmt.Errorf("update reference image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("SetReferenceImage affected 0 rows", "medication_id", medicationID)
	}
	return nil
}

// AppendEntry durably appends one adherence log entry. Appends are retried
// once on SQLite conflict errors since the log is the one write-heavy table.
func (s *SQLiteStore) AppendEntry(ctx context.Context, entry *domain.AdherenceEntry) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	query := `
	INSERT INTO adherence_log (id, device_id, medication_id, timestamp, status, verified)
	VALUES (?, ?, ?, ?, ?, ?)`

	args := []any{
		entry.ID, entry.DeviceID, entry.MedicationID,
		entry.Timestamp.UnixNano(), string(entry.Status), boolToInt(entry.Verified),
	}

	_, err := s.db.ExecContext(ctx, query, args...)
	if shared.IsSQLiteConflictError(err) {
		slog.Warn("Adherence append hit SQLite conflict, retrying", "entry_id", entry.ID)
		time.Sleep(50 * time.Millisecond)
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("append adherence entry: %w", err)
	}
	return nil
}

// ListEntries retrieves all adherence entries for a device, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, deviceID string) ([]domain.AdherenceEntry, error) {
	query := `
		SELECT id, device_id, medication_id, timestamp, status, verified
		FROM adherence_log
		WHERE device_id = ?
		ORDER BY timestamp DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("query adherence log: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Debug("close adherence rows", "error", closeErr)
		}
	}()

	var entries []domain.AdherenceEntry
	for rows.Next() {
		var entry domain.AdherenceEntry
		var ts int64
		var status string
		var verified int

		if err := rows.Scan(&entry.ID, &entry.DeviceID, &entry.MedicationID, &ts, &status, &verified); err != nil {
			return nil, fmt.Errorf("scan adherence row: %w", err)
		}

		entry.Timestamp = time.Unix(0, ts)
		entry.Status = domain.AdherenceStatus(status)
		entry.Verified = verified != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adherence log: %w", err)
	}
	return entries, nil
}

// DeleteEntries removes all adherence entries for a device.
func (s *SQLiteStore) DeleteEntries(ctx context.Context, deviceID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM adherence_log WHERE device_id = ?`, deviceID)
	if err != nil {
		return 0, fmt.Errorf("delete adherence entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

// GetProfile retrieves the profile for a device.
func (s *SQLiteStore) GetProfile(ctx context.Context, deviceID string) (*domain.Profile, error) {
	query := `
		SELECT device_id, display_name, authenticated, consents_json, preferences_json,
		       created_at, updated_at
		FROM profiles WHERE device_id = ?`

	row := s.db.QueryRowContext(ctx, query, deviceID)

	var profile domain.Profile
	var authenticated int
	var consentsJSON, preferencesJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&profile.DeviceID, &profile.DisplayName, &authenticated,
		&consentsJSON, &preferencesJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile row: %w", err)
	}

	if err := json.Unmarshal([]byte(consentsJSON), &profile.Consents); err != nil {
		return nil, fmt.Errorf("decode consents: %w", err)
	}
	if err := json.Unmarshal([]byte(preferencesJSON), &profile.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	profile.Authenticated = authenticated != 0
	profile.CreatedAt = time.Unix(createdAt, 0)
	profile.UpdatedAt = time.Unix(updatedAt, 0)

	return &profile, nil
}

// UpsertProfile creates or updates a device profile.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	consentsJSON, err := json.Marshal(profile.Consents)
	if err != nil {
		return fmt.Errorf("encode consents: %w", err)
	}
	preferencesJSON, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query := `
	INSERT INTO profiles (device_id, display_name, authenticated, consents_json, preferences_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(device_id) DO UPDATE SET
		display_name = excluded.display_name,
		authenticated = excluded.authenticated,
		consents_json = excluded.consents_json,
		preferences_json = excluded.preferences_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		profile.DeviceID, profile.DisplayName, boolToInt(profile.Authenticated),
		string(consentsJSON), string(preferencesJSON),
		profile.CreatedAt.Unix(), profile.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
