package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lpellerin/invento/internal/auth"
	ws "github.com/lpellerin/invento/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to websocket connections that
// receive the owner's article-change and stock notifications.
type WebSocketHandler struct {
	hub       *ws.Hub
	jwtSecret []byte
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, jwtSecret []byte) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already restricts the REST surface; the socket
		// carries no mutations, only notifications.
		return true
	},
}

// Serve authenticates and upgrades the connection. Browsers cannot set
// headers on websocket dials, so a ?token= query parameter is accepted
// alongside the Authorization header.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		if parts := strings.Split(r.Header.Get("Authorization"), "Bearer "); len(parts) == 2 {
			tokenStr = strings.TrimSpace(parts[1])
		}
	}

	accountID, err := auth.ParseToken(tokenStr, h.jwtSecret)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid auth token"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, accountID)
	h.hub.Register <- client

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		// Inbound messages are ignored; the socket is push-only.
		client.ReadPump(nil)
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Unregister <- client
	}()
}
