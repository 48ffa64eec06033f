package services

import (
	"errors"
	"testing"

	"github.com/lpellerin/invento/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc := NewClientService(newTestDB(t), bcrypt.MinCost)

	client, err := svc.Register("Durand", "Alice", "  Alice@Example.COM ", "s3cret")
	require.NoError(t, err)

	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "Durand", client.Name)
	assert.Equal(t, "Alice", client.Surname)
	assert.Equal(t, "alice@example.com", client.Email, "email must be trimmed and lowercased")
	assert.Empty(t, client.PasswordHash, "hash must not leave the service")
	assert.False(t, client.CreatedAt.IsZero())
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	svc := NewClientService(newTestDB(t), bcrypt.MinCost)

	cases := []struct {
		name, surname, email, password string
	}{
		{"", "Alice", "a@b.fr", "pw"},
		{"Durand", "", "a@b.fr", "pw"},
		{"Durand", "Alice", "", "pw"},
		{"Durand", "Alice", "a@b.fr", ""},
		{"  ", "Alice", "a@b.fr", "pw"},
	}
	for _, tc := range cases {
		_, err := svc.Register(tc.name, tc.surname, tc.email, tc.password)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("Register(%q,%q,%q,%q): expected ErrValidation, got %v",
				tc.name, tc.surname, tc.email, tc.password, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := NewClientService(newTestDB(t), bcrypt.MinCost)

	_, err := svc.Register("Durand", "Alice", "alice@example.com", "pw")
	require.NoError(t, err)

	// Same email re-registered, differing only in case and whitespace.
	_, err = svc.Register("Martin", "Bob", " ALICE@example.com", "other")
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	svc := NewClientService(newTestDB(t), bcrypt.MinCost)

	registered, err := svc.Register("Durand", "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		client, err := svc.Authenticate("Alice@Example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, client.ID)
		assert.Empty(t, client.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice@example.com", "nope")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same error", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewClientService(newTestDB(t), bcrypt.MinCost)

	_, err := svc.GetByID("no-such-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
