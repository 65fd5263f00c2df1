package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type assistRequest struct {
	Message string `json:"message"`
}

// Assist forwards a free-text question to the assistant model and returns
// the reply. Failures degrade to a spoken-style fallback inside the
// assistant itself, so this handler never surfaces a model error.
func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := h.assistant.Reply(r.Context(), req.Message)
	JSON(w, http.StatusOK, map[string]string{"reply": reply})
}
