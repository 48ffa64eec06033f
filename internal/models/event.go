package models

import "time"

// Event represents a loggable action or alert in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "article.create", "stock.low"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	ClientID  string    `json:"clientId"`
	ArticleID *string   `json:"articleId,omitempty"` // Nullable for account-level events
	CreatedAt time.Time `json:"createdAt"`
}
