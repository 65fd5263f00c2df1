package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/identity"
)

// GetSettings returns the device profile.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	profile, err := h.repo.GetProfile(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to load profile", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if profile == nil {
		Error(w, http.StatusNotFound, "profile not found")
		return
	}

	JSON(w, http.StatusOK, profile)
}

type updateSettingsRequest struct {
	DisplayName   *string             `json:"display_name,omitempty"`
	Authenticated *bool               `json:"authenticated,omitempty"`
	Consents      *domain.Consents    `json:"consents,omitempty"`
	Preferences   *domain.Preferences `json:"preferences,omitempty"`
}

// UpdateSettings applies a partial profile update. Absent fields keep their
// stored values.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to load profile", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	if profile == nil {
		Error(w, http.StatusNotFound, "profile not found")
		return
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Authenticated != nil {
		profile.Authenticated = *req.Authenticated
	}
	if req.Consents != nil {
		profile.Consents = *req.Consents
	}
	if req.Preferences != nil {
		profile.Preferences = *req.Preferences
	}
	profile.UpdatedAt = h.now()

	if err := h.repo.UpsertProfile(r.Context(), profile); err != nil {
		slog.Error("Failed to save profile", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	JSON(w, http.StatusOK, profile)
}

// DeleteLogs erases the device's adherence log.
func (h *Handler) DeleteLogs(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	deleted, err := h.repo.DeleteEntries(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to delete adherence entries", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete logs")
		return
	}

	slog.Info("Adherence log erased", "device_id", deviceID, "deleted", deleted)
	JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// ExportLogs downloads the device's adherence log as a JSON attachment.
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	entries, err := h.repo.ListEntries(r.Context(), deviceID)
	if err != nil {
		slog.Error("Failed to list adherence entries", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to export logs")
		return
	}
	if entries == nil {
		entries = []domain.AdherenceEntry{}
	}

	w.Header().Set("Content-Disposition", `attachment; filename="medassist-log.json"`)
	JSON(w, http.StatusOK, entries)
}
