package handlers

import (
	"net/http"
	"strconv"

	"github.com/lpellerin/invento/internal/auth"
	"github.com/lpellerin/invento/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler handles HTTP requests for the audit event trail.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request for the caller's recent events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	clientID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.RecentForClient(clientID, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
