package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lpellerin/invento/internal/auth"
	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
)

// ArticleHandler handles HTTP requests for articles.
type ArticleHandler struct {
	service services.ArticleServiceProvider
	hub     *websocket.Hub
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service services.ArticleServiceProvider, hub *websocket.Hub) *ArticleHandler {
	return &ArticleHandler{service: service, hub: hub}
}

// Create handles the request to create a new article.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	var input services.ArticleInput
	if err := decodeStrict(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	article, err := h.service.Create(ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(ownerID, websocket.Encode("article.created", article))
	writeJSON(w, http.StatusCreated, article)
}

// List handles the request for the owner's articles, newest first.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	articles, err := h.service.ListByOwner(ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

// Get handles the request for a single article.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	article, err := h.service.GetByID(ownerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Update handles a partial update of an article.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	var patch services.ArticlePatch
	if err := decodeStrict(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	article, err := h.service.Update(ownerID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(ownerID, websocket.Encode("article.updated", article))
	writeJSON(w, http.StatusOK, article)
}

// Delete handles the permanent removal of an article.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ClientID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing auth token"})
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(ownerID, id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(ownerID, websocket.Encode("article.deleted", map[string]string{"id": id}))
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
