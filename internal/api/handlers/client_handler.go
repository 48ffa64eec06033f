package handlers

import (
	"net/http"
	"time"

	"github.com/lpellerin/invento/internal/auth"
	"github.com/lpellerin/invento/internal/models"
	"github.com/lpellerin/invento/internal/services"
	"github.com/rs/zerolog/log"
)

// ClientHandler handles HTTP requests for client accounts.
type ClientHandler struct {
	service   services.ClientServiceProvider
	eventSvc  services.EventServiceProvider
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service services.ClientServiceProvider, eventSvc services.EventServiceProvider, jwtSecret []byte, tokenTTL time.Duration) *ClientHandler {
	return &ClientHandler{
		service:   service,
		eventSvc:  eventSvc,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login: the client's public
// fields plus a freshly issued session token.
type SessionResponse struct {
	models.Client
	Token string `json:"token"`
}

// Register handles new client registration.
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeStrict(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	client, err := h.service.Register(payload.Name, payload.Surname, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register client")
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(client.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		log.Error().Err(err).Str("client_id", client.ID).Msg("Failed to generate session token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to generate token"})
		return
	}

	h.eventSvc.Record("client.register", "info", "Account created.", client.ID, nil)
	writeJSON(w, http.StatusCreated, SessionResponse{Client: client, Token: token})
}

// Login handles client authentication and session token issuance.
func (h *ClientHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeStrict(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	client, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(client.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		log.Error().Err(err).Str("client_id", client.ID).Msg("Failed to generate session token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to generate token"})
		return
	}

	h.eventSvc.Record("client.login", "info", "Signed in.", client.ID, nil)
	writeJSON(w, http.StatusOK, SessionResponse{Client: client, Token: token})
}

// Profile returns the authenticated client's public fields.
func (h *ClientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	clientID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	client, err := h.service.GetByID(clientID)
	if err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("Client from token not found")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}
