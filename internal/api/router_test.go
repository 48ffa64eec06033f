package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lpellerin/invento/internal/auth"
	"github.com/lpellerin/invento/internal/config"
	"github.com/lpellerin/invento/internal/database"
	"github.com/lpellerin/invento/internal/models"
	"github.com/lpellerin/invento/internal/monitoring"
	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		BcryptCost:     bcrypt.MinCost,
		AllowedOrigins: []string{"*"},
		StatsInterval:  time.Hour,
	}

	hub := websocket.NewHub()
	go hub.Run()

	eventService := services.NewEventService(db)
	clientService := services.NewClientService(db, cfg.BcryptCost)
	articleService := services.NewArticleService(db, eventService)
	statUpdater := monitoring.NewStatUpdater(db, hub, cfg.StatsInterval)

	srv := httptest.NewServer(NewRouter(cfg, hub, clientService, articleService, eventService, statUpdater))
	t.Cleanup(srv.Close)
	return srv
}

type session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func doJSON(t *testing.T, method, url, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil && resp.StatusCode < 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func register(t *testing.T, srv *httptest.Server, email string) session {
	t.Helper()
	var s session
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", "", map[string]string{
		"name": "Durand", "surname": "Alice", "email": email, "password": "s3cret",
	}, &s)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, s.Token)
	return s
}

func TestRegister_TokenResolvesToStoredClient(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	s := register(t, srv, "alice@example.com")

	clientID, err := auth.ParseToken(s.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, s.ID, clientID)

	var profile models.Client
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/clients/profile", s.Token, nil, &profile)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, s.ID, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestRegister_DuplicateEmailIs400(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	register(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", "", map[string]string{
		"name": "Martin", "surname": "Bob", "email": "alice@example.com", "password": "pw",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_MissingFieldsIs400(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients", "", map[string]string{
		"name": "Durand", "email": "x@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPasswordIs401WithoutToken(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	register(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Token)
	assert.NotEmpty(t, body.Message)
}

func TestArticleLifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	s := register(t, srv, "alice@example.com")

	// Register → create → list returns exactly the created article.
	var created models.Article
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/articles", s.Token, map[string]interface{}{
		"name": "Laptop", "description": "15in, 16GB", "price": 1500, "quantity": 5,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list []models.Article
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/articles", s.Token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Laptop", list[0].Name)
	assert.Equal(t, 1500.0, list[0].Price)
	assert.Equal(t, 5, list[0].Quantity)

	// Partial update: quantity to zero is accepted, other fields untouched.
	var updated models.Article
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/articles/"+created.ID, s.Token, map[string]interface{}{
		"quantity": 0,
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, updated.Quantity)
	assert.Equal(t, "Laptop", updated.Name)
	assert.Equal(t, 1500.0, updated.Price)

	// Delete responds with the removed id; a second delete is 404.
	var deleted map[string]string
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/articles/"+created.ID, s.Token, nil, &deleted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, deleted["id"])

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/articles/"+created.ID, s.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArticleCreate_MissingFieldsIs400(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	s := register(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/articles", s.Token, map[string]interface{}{
		"name": "Laptop", "description": "15in",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown fields are rejected outright.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/articles", s.Token, map[string]interface{}{
		"name": "Laptop", "description": "15in", "price": 1, "quantity": 1, "bogus": true,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArticle_CrossTenantIsolation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	alice := register(t, srv, "alice@example.com")
	bob := register(t, srv, "bob@example.com")

	var created models.Article
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/articles", alice.Token, map[string]interface{}{
		"name": "Laptop", "description": "d", "price": 1, "quantity": 1,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Bob's list never contains Alice's article.
	var list []models.Article
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/articles", bob.Token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	// Existing-but-foreign article: always 401, never 404.
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp = doJSON(t, method, srv.URL+"/api/articles/"+created.ID, bob.Token, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s as non-owner", method)
	}
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/articles/"+created.ID, bob.Token, map[string]interface{}{
		"price": 2,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Missing article: 404 regardless of caller.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/articles/no-such-id", bob.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/clients/profile"},
		{http.MethodGet, "/api/articles"},
		{http.MethodPost, "/api/articles"},
		{http.MethodGet, "/api/articles/some-id"},
		{http.MethodGet, "/api/events"},
	}
	for _, p := range paths {
		resp := doJSON(t, p.method, srv.URL+p.path, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s without token", p.method, p.path)

		resp = doJSON(t, p.method, srv.URL+p.path, "garbage-token", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with bad token", p.method, p.path)
	}
}

func TestExpiredTokenIs401(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	register(t, srv, "alice@example.com")

	var s session
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/clients/login", "", map[string]string{
		"email": "alice@example.com", "password": "s3cret",
	}, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expired, err := auth.GenerateToken(s.ID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/articles", expired, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventsEndpoint_OwnerScoped(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	alice := register(t, srv, "alice@example.com")
	bob := register(t, srv, "bob@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/articles", alice.Token, map[string]interface{}{
		"name": "Laptop", "description": "d", "price": 1, "quantity": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var aliceEvents []models.Event
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/events", alice.Token, nil, &aliceEvents)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, aliceEvents)
	for _, e := range aliceEvents {
		assert.Equal(t, alice.ID, e.ClientID)
	}

	var bobEvents []models.Event
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/events", bob.Token, nil, &bobEvents)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, e := range bobEvents {
		assert.Equal(t, bob.ID, e.ClientID)
	}
}

func TestStatusEndpointIsPublic(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/api/status", srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
