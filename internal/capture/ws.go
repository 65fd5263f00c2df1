package capture

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/medassist-labs/medassist/internal/identity"
)

// maxFrameBytes bounds a single pushed JPEG frame.
const maxFrameBytes = 4 << 20

// FeedHandler accepts WebSocket camera connections from the frontend. The
// browser owns the physical camera; it streams JPEG frames as binary
// messages, and the feed registry makes the latest frame available to the
// verification workflow.
type FeedHandler struct {
	provider      *FeedProvider
	allowedOrigin string
	isDev         bool
}

// NewFeedHandler creates a new camera feed handler.
func NewFeedHandler(provider *FeedProvider, allowedOrigin string, isDev bool) *FeedHandler {
	return &FeedHandler{
		provider:      provider,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())
	slog.Info("Camera feed connection request", "device_id", deviceID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept camera WebSocket", "error", err, "device_id", deviceID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed ended"); closeErr != nil {
			slog.Debug("Failed to close camera websocket", "error", closeErr, "device_id", deviceID)
		}
	}()

	ws.SetReadLimit(maxFrameBytes)

	h.provider.Register(deviceID)
	defer h.provider.Unregister(deviceID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				slog.Info("Camera feed closed", "device_id", deviceID)
			} else {
				slog.Debug("Camera feed read error", "error", err, "device_id", deviceID)
			}
			return
		}
		if typ != websocket.MessageBinary || len(data) == 0 {
			continue
		}
		h.provider.Push(deviceID, data)
	}
}

func (h *FeedHandler) checkOrigin(r *http.Request) bool {
	if h.isDev || h.allowedOrigin == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || strings.HasPrefix(origin, h.allowedOrigin)
}
