package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lpellerin/invento/internal/apperr"
	"github.com/lpellerin/invento/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ClientServiceProvider defines the interface for client account services.
type ClientServiceProvider interface {
	Register(name, surname, email, password string) (models.Client, error)
	Authenticate(email, password string) (models.Client, error)
	GetByID(id string) (models.Client, error)
}

// ClientService provides business logic for client account management.
type ClientService struct {
	db         *sql.DB
	bcryptCost int
}

// NewClientService creates a new ClientService.
func NewClientService(db *sql.DB, bcryptCost int) *ClientService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &ClientService{db: db, bcryptCost: bcryptCost}
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new client account, hashing the password.
func (s *ClientService) Register(name, surname, email, password string) (models.Client, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	email = NormalizeEmail(email)

	if name == "" || surname == "" || email == "" || password == "" {
		return models.Client{}, fmt.Errorf("name, surname, email and password are required: %w", apperr.ErrValidation)
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM clients WHERE email = ?", email).Scan(&exists); err != nil {
		return models.Client{}, err
	}
	if exists > 0 {
		return models.Client{}, apperr.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.Client{}, fmt.Errorf("failed to hash password: %w", err)
	}

	client := models.Client{
		ID:           uuid.New().String(),
		Name:         name,
		Surname:      surname,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	stmt, err := s.db.Prepare("INSERT INTO clients(id, name, surname, email, password_hash) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.Client{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(client.ID, client.Name, client.Surname, client.Email, client.PasswordHash); err != nil {
		// The unique index backstops the existence check under concurrent registration.
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.Client{}, apperr.ErrEmailTaken
		}
		return models.Client{}, err
	}

	return s.GetByID(client.ID)
}

// Authenticate verifies a client's credentials. The error never reveals
// whether the email or the password was wrong.
func (s *ClientService) Authenticate(email, password string) (models.Client, error) {
	email = NormalizeEmail(email)

	var client models.Client
	row := s.db.QueryRow("SELECT id, name, surname, email, password_hash, created_at FROM clients WHERE email = ?", email)
	err := row.Scan(&client.ID, &client.Name, &client.Surname, &client.Email, &client.PasswordHash, &client.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Client{}, apperr.ErrInvalidCredentials
		}
		return models.Client{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)); err != nil {
		return models.Client{}, apperr.ErrInvalidCredentials
	}

	// Don't send the password hash to the caller
	client.PasswordHash = ""
	return client, nil
}

// GetByID retrieves a single client by their ID, without the password hash.
func (s *ClientService) GetByID(id string) (models.Client, error) {
	var client models.Client
	row := s.db.QueryRow("SELECT id, name, surname, email, created_at FROM clients WHERE id = ?", id)
	err := row.Scan(&client.ID, &client.Name, &client.Surname, &client.Email, &client.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Client{}, fmt.Errorf("client %s: %w", id, apperr.ErrNotFound)
		}
		return models.Client{}, err
	}
	return client, nil
}
