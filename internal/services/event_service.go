package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lpellerin/invento/internal/models"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for the audit event trail.
type EventServiceProvider interface {
	Record(eventType, level, message, clientID string, articleID *string)
	RecentForClient(clientID string, limit int) ([]models.Event, error)
}

// EventService provides business logic for audit event management.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event. Auditing is best-effort: a failed insert is logged
// and never fails the operation that produced the event.
func (s *EventService) Record(eventType, level, message, clientID string, articleID *string) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		ClientID:  clientID,
		ArticleID: articleID,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, client_id, article_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to prepare event insert")
		return
	}
	defer stmt.Close()

	if _, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.ClientID, event.ArticleID, event.CreatedAt); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

// RecentForClient retrieves the most recent events belonging to one client.
func (s *EventService) RecentForClient(clientID string, limit int) ([]models.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, type, level, message, client_id, article_id, created_at
		FROM events WHERE client_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
	`, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.ClientID, &event.ArticleID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
