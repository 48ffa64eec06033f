package client

import (
	"context"
	"sync"

	"github.com/lpellerin/invento/internal/models"
)

// Status carries the transient flags of an asynchronous operation, mirroring
// the loading/success/error/message quadruple of the original state cache.
type Status struct {
	Loading bool
	Success bool
	Error   bool
	Message string
}

// SessionState is the session slice: current client, token and flags.
type SessionState struct {
	Client *models.Client
	Token  string
	Status
}

// Authenticated reports whether a session token is present. An absent token
// always means "not authenticated".
func (s SessionState) Authenticated() bool { return s.Token != "" }

// ArticlesState is the articles slice: cached list and flags.
type ArticlesState struct {
	Items []models.Article
	Status
}

// Store is the application state cache: one session slice and one articles
// slice, each updated through pending/fulfilled/rejected cycles. The store is
// an explicit dependency; construct it once at the composition root and pass
// it where needed.
type Store struct {
	api     *API
	storage TokenStorage

	mu       sync.Mutex
	session  SessionState
	articles ArticlesState

	// Generation counters guard against a superseded request's late response
	// overwriting newer state.
	sessionGen  uint64
	articlesGen uint64
}

// NewStore creates a store over an API client, restoring any persisted token.
func NewStore(api *API, storage TokenStorage) (*Store, error) {
	st := &Store{api: api, storage: storage}
	token, err := storage.Load()
	if err != nil {
		return nil, err
	}
	st.session.Token = token
	return st, nil
}

// Session returns a copy of the session slice.
func (s *Store) Session() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Articles returns a copy of the articles slice. The item slice itself is
// shared read-only; callers must not mutate it.
func (s *Store) Articles() ArticlesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articles
}

// ResetSession clears the session slice's transient flags, keeping its data.
func (s *Store) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Status = Status{}
}

// ResetArticles clears the articles slice's transient flags, keeping the list.
func (s *Store) ResetArticles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles.Status = Status{}
}

// beginSession marks the session slice pending and stamps the operation.
func (s *Store) beginSession() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionGen++
	s.session.Status = Status{Loading: true}
	return s.sessionGen
}

// settleSession applies fn unless a newer session operation superseded gen.
func (s *Store) settleSession(gen uint64, fn func(*SessionState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sessionGen {
		return false // stale response, drop it
	}
	fn(&s.session)
	return true
}

func (s *Store) beginArticles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articlesGen++
	s.articles.Loading = true
	s.articles.Success = false
	s.articles.Error = false
	s.articles.Message = ""
	return s.articlesGen
}

func (s *Store) settleArticles(gen uint64, fn func(*ArticlesState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.articlesGen {
		return false
	}
	fn(&s.articles)
	return true
}

// Register runs the registration cycle: pending, then a fulfilled session or
// a rejected message.
func (s *Store) Register(ctx context.Context, input RegisterInput) error {
	gen := s.beginSession()
	session, err := s.api.Register(ctx, input)
	if err != nil {
		s.settleSession(gen, func(st *SessionState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	if s.settleSession(gen, func(st *SessionState) {
		c := session.Client
		st.Client = &c
		st.Token = session.Token
		st.Status = Status{Success: true}
	}) {
		return s.storage.Save(session.Token)
	}
	return nil
}

// Login runs the authentication cycle. On rejection the session stays as it
// was: no token is recorded and the cached client is untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	gen := s.beginSession()
	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.settleSession(gen, func(st *SessionState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	if s.settleSession(gen, func(st *SessionState) {
		c := session.Client
		st.Client = &c
		st.Token = session.Token
		st.Status = Status{Success: true}
	}) {
		return s.storage.Save(session.Token)
	}
	return nil
}

// Logout discards the session and cached articles entirely.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.sessionGen++
	s.articlesGen++
	s.session = SessionState{}
	s.articles = ArticlesState{}
	s.mu.Unlock()
	return s.storage.Clear()
}

// FetchProfile refreshes the cached client from the backend.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.session.Token
	s.mu.Unlock()

	gen := s.beginSession()
	client, err := s.api.Profile(ctx, token)
	if err != nil {
		s.settleSession(gen, func(st *SessionState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	s.settleSession(gen, func(st *SessionState) {
		st.Client = &client
		st.Status = Status{Success: true}
	})
	return nil
}

// FetchArticles replaces the cached list with the backend's.
func (s *Store) FetchArticles(ctx context.Context) error {
	token := s.Session().Token
	gen := s.beginArticles()

	items, err := s.api.ListArticles(ctx, token)
	if err != nil {
		s.settleArticles(gen, func(st *ArticlesState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	s.settleArticles(gen, func(st *ArticlesState) {
		st.Items = items
		st.Status = Status{Success: true}
	})
	return nil
}

// CreateArticle persists a new article and prepends it to the cached list.
func (s *Store) CreateArticle(ctx context.Context, input ArticleInput) error {
	token := s.Session().Token
	gen := s.beginArticles()

	article, err := s.api.CreateArticle(ctx, token, input)
	if err != nil {
		s.settleArticles(gen, func(st *ArticlesState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	s.settleArticles(gen, func(st *ArticlesState) {
		st.Items = append([]models.Article{article}, st.Items...)
		st.Status = Status{Success: true}
	})
	return nil
}

// UpdateArticle applies a partial update and replaces the cached entry by id.
func (s *Store) UpdateArticle(ctx context.Context, id string, patch ArticlePatch) error {
	token := s.Session().Token
	gen := s.beginArticles()

	article, err := s.api.UpdateArticle(ctx, token, id, patch)
	if err != nil {
		s.settleArticles(gen, func(st *ArticlesState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	s.settleArticles(gen, func(st *ArticlesState) {
		items := make([]models.Article, len(st.Items))
		copy(items, st.Items)
		for i := range items {
			if items[i].ID == article.ID {
				items[i] = article
			}
		}
		st.Items = items
		st.Status = Status{Success: true}
	})
	return nil
}

// DeleteArticle removes the article on the backend and from the cached list.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	token := s.Session().Token
	gen := s.beginArticles()

	deletedID, err := s.api.DeleteArticle(ctx, token, id)
	if err != nil {
		s.settleArticles(gen, func(st *ArticlesState) {
			st.Status = Status{Error: true, Message: err.Error()}
		})
		return err
	}

	s.settleArticles(gen, func(st *ArticlesState) {
		items := st.Items[:0:0]
		for _, a := range st.Items {
			if a.ID != deletedID {
				items = append(items, a)
			}
		}
		st.Items = items
		st.Status = Status{Success: true}
	})
	return nil
}
