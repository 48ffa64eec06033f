package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lpellerin/invento/internal/apperr"
)

// Claims defines the JWT claims structure.
type Claims struct {
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

type contextKey string

// clientIDKey is the context key for the authenticated client's ID.
const clientIDKey = contextKey("clientID")

// GenerateToken creates a signed session token for a client.
func GenerateToken(clientID string, secret []byte, ttl time.Duration) (string, error) {
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a token string and returns the client ID it asserts.
// Malformed, forged and expired tokens all come back as ErrInvalidToken.
func ParseToken(tokenStr string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid || claims.ClientID == "" {
		return "", apperr.ErrInvalidToken
	}
	return claims.ClientID, nil
}

// Middleware protects routes, resolving the bearer token to a client identity.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = strings.TrimSpace(parts[1])
				}
			}

			if tokenStr == "" {
				unauthorized(w, "Missing auth token")
				return
			}

			clientID, err := ParseToken(tokenStr, secret)
			if err != nil {
				unauthorized(w, "Invalid auth token")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientID returns the authenticated client's ID from the request context.
func ClientID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey).(string)
	return id, ok && id != ""
}

// WithClientID injects a client identity, used by the websocket endpoint and tests.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
