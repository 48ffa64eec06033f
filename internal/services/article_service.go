package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lpellerin/invento/internal/apperr"
	"github.com/lpellerin/invento/internal/models"
)

// ArticleInput is the payload for creating an article. Price and Quantity are
// pointers so that an explicit zero is distinguishable from an absent field.
type ArticleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	ImageURL    string   `json:"imageUrl"`
}

// ArticlePatch carries the fields of a partial update; nil fields are left unchanged.
type ArticlePatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	ImageURL    *string  `json:"imageUrl"`
}

// ArticleServiceProvider defines the interface for article services.
type ArticleServiceProvider interface {
	Create(ownerID string, input ArticleInput) (models.Article, error)
	ListByOwner(ownerID string) ([]models.Article, error)
	GetByID(ownerID, articleID string) (models.Article, error)
	Update(ownerID, articleID string, patch ArticlePatch) (models.Article, error)
	Delete(ownerID, articleID string) error
}

// ArticleService provides ownership-guarded CRUD over articles.
type ArticleService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB, eventSvc EventServiceProvider) *ArticleService {
	return &ArticleService{db: db, eventSvc: eventSvc}
}

func validateArticle(a models.Article) error {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("name and description are required: %w", apperr.ErrValidation)
	}
	if a.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", apperr.ErrValidation)
	}
	if a.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative: %w", apperr.ErrValidation)
	}
	return nil
}

// Create persists a new article owned by ownerID. Price and quantity must be
// present; zero is a legal value for both.
func (s *ArticleService) Create(ownerID string, input ArticleInput) (models.Article, error) {
	if input.Price == nil || input.Quantity == nil {
		return models.Article{}, fmt.Errorf("price and quantity are required: %w", apperr.ErrValidation)
	}

	article := models.Article{
		ID:          uuid.New().String(),
		ClientID:    ownerID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       *input.Price,
		Quantity:    *input.Quantity,
		ImageURL:    input.ImageURL,
	}
	if err := validateArticle(article); err != nil {
		return models.Article{}, err
	}

	now := time.Now().UTC()
	stmt, err := s.db.Prepare(`
		INSERT INTO articles (id, client_id, name, description, price, quantity, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return models.Article{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(article.ID, article.ClientID, article.Name, article.Description, article.Price, article.Quantity, article.ImageURL, now, now); err != nil {
		return models.Article{}, err
	}

	s.eventSvc.Record("article.create", "info", fmt.Sprintf("Article '%s' created.", article.Name), ownerID, &article.ID)
	return s.GetByID(ownerID, article.ID)
}

// ListByOwner returns the owner's articles, newest first. No articles is an
// empty list, not an error.
func (s *ArticleService) ListByOwner(ownerID string) ([]models.Article, error) {
	rows, err := s.db.Query(`
		SELECT id, client_id, name, description, price, quantity, image_url, created_at, updated_at
		FROM articles WHERE client_id = ? ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Name, &a.Description, &a.Price, &a.Quantity, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetByID fetches one article. A missing article is ErrNotFound regardless of
// caller; an article owned by someone else is ErrNotOwner, never ErrNotFound.
func (s *ArticleService) GetByID(ownerID, articleID string) (models.Article, error) {
	var a models.Article
	row := s.db.QueryRow(`
		SELECT id, client_id, name, description, price, quantity, image_url, created_at, updated_at
		FROM articles WHERE id = ?
	`, articleID)
	err := row.Scan(&a.ID, &a.ClientID, &a.Name, &a.Description, &a.Price, &a.Quantity, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Article{}, fmt.Errorf("article %s: %w", articleID, apperr.ErrNotFound)
		}
		return models.Article{}, err
	}
	if a.ClientID != ownerID {
		return models.Article{}, apperr.ErrNotOwner
	}
	return a, nil
}

// Update merges the patch into the stored article, re-validates the merged
// record and persists it. Fields absent from the patch are untouched.
func (s *ArticleService) Update(ownerID, articleID string, patch ArticlePatch) (models.Article, error) {
	article, err := s.GetByID(ownerID, articleID)
	if err != nil {
		return models.Article{}, err
	}

	if patch.Name != nil {
		article.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		article.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		article.Price = *patch.Price
	}
	if patch.Quantity != nil {
		article.Quantity = *patch.Quantity
	}
	if patch.ImageURL != nil {
		article.ImageURL = *patch.ImageURL
	}

	if err := validateArticle(article); err != nil {
		return models.Article{}, err
	}

	article.UpdatedAt = time.Now().UTC()
	stmt, err := s.db.Prepare(`
		UPDATE articles SET name = ?, description = ?, price = ?, quantity = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`)
	if err != nil {
		return models.Article{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(article.Name, article.Description, article.Price, article.Quantity, article.ImageURL, article.UpdatedAt, article.ID); err != nil {
		return models.Article{}, err
	}

	s.eventSvc.Record("article.update", "info", fmt.Sprintf("Article '%s' updated.", article.Name), ownerID, &article.ID)
	return s.GetByID(ownerID, articleID)
}

// Delete permanently removes an article after the same existence and
// ownership checks as GetByID.
func (s *ArticleService) Delete(ownerID, articleID string) error {
	article, err := s.GetByID(ownerID, articleID)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM articles WHERE id = ?", articleID); err != nil {
		return err
	}

	s.eventSvc.Record("article.delete", "info", fmt.Sprintf("Article '%s' deleted.", article.Name), ownerID, &articleID)
	return nil
}
