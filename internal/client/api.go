package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lpellerin/invento/internal/models"
)

// API is the HTTP wrapper around the inventory REST surface. One method per
// endpoint; protected calls take the bearer token explicitly.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates an API client for the given base URL (e.g. "http://localhost:8080").
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// RegisterInput is the registration request payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ArticleInput is the creation payload. Price and Quantity are pointers so an
// explicit zero survives the trip.
type ArticleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// ArticlePatch is the partial-update payload; nil fields are not sent.
type ArticlePatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

// Session is the register/login response: public client fields plus a token.
type Session struct {
	models.Client
	Token string `json:"token"`
}

func (a *API) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Register creates an account and returns the new session.
func (a *API) Register(ctx context.Context, input RegisterInput) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/api/clients", "", input, &s)
	return s, err
}

// Login authenticates and returns a session.
func (a *API) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	payload := map[string]string{"email": email, "password": password}
	err := a.do(ctx, http.MethodPost, "/api/clients/login", "", payload, &s)
	return s, err
}

// Profile fetches the authenticated client's public fields.
func (a *API) Profile(ctx context.Context, token string) (models.Client, error) {
	var c models.Client
	err := a.do(ctx, http.MethodGet, "/api/clients/profile", token, nil, &c)
	return c, err
}

// CreateArticle persists a new article.
func (a *API) CreateArticle(ctx context.Context, token string, input ArticleInput) (models.Article, error) {
	var art models.Article
	err := a.do(ctx, http.MethodPost, "/api/articles", token, input, &art)
	return art, err
}

// ListArticles fetches the caller's articles, newest first.
func (a *API) ListArticles(ctx context.Context, token string) ([]models.Article, error) {
	var arts []models.Article
	err := a.do(ctx, http.MethodGet, "/api/articles", token, nil, &arts)
	return arts, err
}

// GetArticle fetches one article by id.
func (a *API) GetArticle(ctx context.Context, token, id string) (models.Article, error) {
	var art models.Article
	err := a.do(ctx, http.MethodGet, "/api/articles/"+id, token, nil, &art)
	return art, err
}

// UpdateArticle applies a partial update.
func (a *API) UpdateArticle(ctx context.Context, token, id string, patch ArticlePatch) (models.Article, error) {
	var art models.Article
	err := a.do(ctx, http.MethodPut, "/api/articles/"+id, token, patch, &art)
	return art, err
}

// DeleteArticle removes an article and returns the deleted id.
func (a *API) DeleteArticle(ctx context.Context, token, id string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := a.do(ctx, http.MethodDelete, "/api/articles/"+id, token, nil, &out)
	return out.ID, err
}
