package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/identity"
	"github.com/medassist-labs/medassist/internal/verify"
)

// appendTimeout bounds the outcome write. The write runs on the workflow's
// callback path, detached from any request context.
const appendTimeout = 5 * time.Second

type startVerificationRequest struct {
	MedicationID string `json:"medication_id"`
}

// StartVerification opens a verification workflow for one medication. At
// most one workflow may be open per device.
func (h *Handler) StartVerification(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	var req startVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MedicationID == "" {
		Error(w, http.StatusBadRequest, "medication_id is required")
		return
	}

	med, err := h.repo.GetMedication(r.Context(), req.MedicationID)
	if err != nil {
		slog.Error("Failed to load medication", "medication_id", req.MedicationID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load medication")
		return
	}
	if med == nil {
		Error(w, http.StatusNotFound, "medication not found")
		return
	}
	merged := h.prefetcher.Apply(*med)

	var wf *verify.Workflow
	wf = verify.New(merged, deviceID, h.camera, h.classifier, verify.Callbacks{
		OnConfirm: func(verified bool) {
			h.appendAdherence(deviceID, merged.ID, verified)
			h.workflows.Remove(deviceID, wf)
		},
		OnCancel: func() {
			h.workflows.Remove(deviceID, wf)
		},
	}, h.verifyTimeout)

	// The conflict decision happens inside the manager, under its lock, so
	// two concurrent starts for one device cannot both succeed.
	if err := h.workflows.Start(deviceID, wf); err != nil {
		if errors.Is(err, verify.ErrWorkflowOpen) {
			Error(w, http.StatusConflict, "a verification is already in progress")
			return
		}
		slog.Error("Failed to start verification workflow", "device_id", deviceID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to start verification")
		return
	}
	JSON(w, http.StatusCreated, wf.Snapshot())
}

// VerificationStatus returns the snapshot of the open workflow.
func (h *Handler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	wf := h.workflows.Get(deviceID)
	if wf == nil {
		Error(w, http.StatusNotFound, "no verification in progress")
		return
	}
	JSON(w, http.StatusOK, wf.Snapshot())
}

type verificationEventRequest struct {
	Action string `json:"action"`
}

// VerificationEvent submits one user action to the open workflow.
func (h *Handler) VerificationEvent(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())

	var req verificationEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		Error(w, http.StatusBadRequest, "action is required")
		return
	}

	wf := h.workflows.Get(deviceID)
	if wf == nil {
		Error(w, http.StatusNotFound, "no verification in progress")
		return
	}

	var err error
	switch req.Action {
	case "request_camera":
		err = wf.RequestCamera(r.Context())
	case "capture":
		err = wf.Capture(r.Context())
	case "skip_manual":
		err = wf.SkipToManual()
	case "confirm_taken":
		err = wf.ConfirmTaken()
	case "confirm_anyway":
		err = wf.ConfirmAnyway()
	case "manual_yes":
		err = wf.ManualYes()
	case "manual_no":
		err = wf.ManualNo()
	case "cancel":
		err = wf.Cancel()
	default:
		Error(w, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}

	if err != nil {
		if errors.Is(err, verify.ErrInvalidTransition) {
			Error(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("Verification event failed",
			"device_id", deviceID, "action", req.Action, "error", err)
		Error(w, http.StatusInternalServerError, "verification event failed")
		return
	}

	JSON(w, http.StatusOK, wf.Snapshot())
}

// appendAdherence durably records a confirmed dose. Runs on the workflow
// callback path, after the triggering request may have completed.
func (h *Handler) appendAdherence(deviceID, medicationID string, verified bool) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	entry := &domain.AdherenceEntry{
		ID:           uuid.NewString(),
		DeviceID:     deviceID,
		MedicationID: medicationID,
		Timestamp:    h.now(),
		Status:       domain.StatusTaken,
		Verified:     verified,
	}
	if err := h.repo.AppendEntry(ctx, entry); err != nil {
		slog.Error("Failed to append adherence entry",
			"device_id", deviceID, "medication_id", medicationID, "error", err)
	}
}
