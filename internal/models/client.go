package models

import "time"

// Client represents a registered account owning articles.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`    // last name
	Surname      string    `json:"surname"` // first name
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}
