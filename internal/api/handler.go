// Package api provides HTTP handlers for the MedAssist API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medassist-labs/medassist/internal/capture"
	"github.com/medassist-labs/medassist/internal/images"
	"github.com/medassist-labs/medassist/internal/store"
	"github.com/medassist-labs/medassist/internal/verify"
	"github.com/medassist-labs/medassist/internal/vision"
)

// Handler provides the MedAssist HTTP API.
type Handler struct {
	repo             store.Repository
	workflows        *verify.Manager
	camera           capture.Provider
	classifier       vision.Classifier
	assistant        vision.Assistant
	prefetcher       *images.Prefetcher
	refillWindowDays int
	verifyTimeout    time.Duration
	now              func() time.Time
}

// NewHandler creates a new Handler with its collaborators.
func NewHandler(
	repo store.Repository,
	workflows *verify.Manager,
	camera capture.Provider,
	classifier vision.Classifier,
	assistant vision.Assistant,
	prefetcher *images.Prefetcher,
	refillWindowDays int,
	verifyTimeout time.Duration,
) *Handler {
	return &Handler{
		repo:             repo,
		workflows:        workflows,
		camera:           camera,
		classifier:       classifier,
		assistant:        assistant,
		prefetcher:       prefetcher,
		refillWindowDays: refillWindowDays,
		verifyTimeout:    verifyTimeout,
		now:              time.Now,
	}
}

// RegisterRoutes mounts all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule", h.Schedule)
		r.Get("/history", h.History)
		r.Get("/refills", h.Refills)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Delete("/logs", h.DeleteLogs)
		r.Get("/logs/export", h.ExportLogs)
		r.Post("/assist", h.Assist)
		r.Post("/verify", h.StartVerification)
		r.Get("/verify", h.VerificationStatus)
		r.Post("/verify/event", h.VerificationEvent)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
