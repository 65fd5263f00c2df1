package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/identity"
)

type scheduleResponse struct {
	Medications    []domain.Medication `json:"medications"`
	TakenToday     int                 `json:"taken_today"`
	ScheduledToday int                 `json:"scheduled_today"`
}

// Schedule returns the daily medication schedule with today's progress.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	meds, err := h.repo.ListMedications(r.Context())
	if err != nil {
		slog.Error("Failed to list medications", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}

	merged := make([]domain.Medication, 0, len(meds))
	scheduled := 0
	for _, med := range meds {
		merged = append(merged, h.prefetcher.Apply(med))
		scheduled += len(med.Times)
	}

	entries, err := h.repo.ListEntries(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to list adherence entries", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}

	now := h.now()
	taken := 0
	for _, e := range entries {
		if e.Status == domain.StatusTaken && sameDay(e.Timestamp, now) {
			taken++
		}
	}

	JSON(w, http.StatusOK, scheduleResponse{
		Medications:    merged,
		TakenToday:     taken,
		ScheduledToday: scheduled,
	})
}

// History returns the device's adherence log, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	entries, err := h.repo.ListEntries(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to list adherence entries", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []domain.AdherenceEntry{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Refills returns medications whose refill date falls inside the pickup
// window.
func (h *Handler) Refills(w http.ResponseWriter, r *http.Request) {
	meds, err := h.repo.ListMedications(r.Context())
	if err != nil {
		slog.Error("Failed to list medications", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load refills")
		return
	}

	due := domain.RefillsDue(meds, h.now(), h.refillWindowDays)
	merged := make([]domain.Medication, 0, len(due))
	for _, med := range due {
		merged = append(merged, h.prefetcher.Apply(med))
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"medications": merged,
		"window_days": h.refillWindowDays,
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
