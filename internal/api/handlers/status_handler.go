package handlers

import (
	"net/http"

	"github.com/lpellerin/invento/internal/monitoring"
)

// StatusHandler exposes the latest monitoring snapshot.
type StatusHandler struct {
	updater *monitoring.StatUpdater
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(updater *monitoring.StatUpdater) *StatusHandler {
	return &StatusHandler{updater: updater}
}

// Get returns the most recent host and inventory stats sample.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.updater.Latest())
}
