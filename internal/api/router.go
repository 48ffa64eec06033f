package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lpellerin/invento/internal/api/handlers"
	"github.com/lpellerin/invento/internal/auth"
	"github.com/lpellerin/invento/internal/config"
	"github.com/lpellerin/invento/internal/monitoring"
	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	clientService services.ClientServiceProvider,
	articleService services.ArticleServiceProvider,
	eventService services.EventServiceProvider,
	statUpdater *monitoring.StatUpdater,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	secret := []byte(cfg.JWTSecret)

	// Initialize handlers
	clientHandler := handlers.NewClientHandler(clientService, eventService, secret, cfg.TokenTTL)
	articleHandler := handlers.NewArticleHandler(articleService, hub)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler(statUpdater)
	wsHandler := handlers.NewWebSocketHandler(hub, secret)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)
		r.Get("/ws", wsHandler.Serve)

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", clientHandler.Register)
			r.Post("/login", clientHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(secret))
				r.Get("/profile", clientHandler.Profile)
			})
		})

		r.Route("/articles", func(r chi.Router) {
			r.Use(auth.Middleware(secret))
			r.Get("/", articleHandler.List)
			r.Post("/", articleHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", articleHandler.Get)
				r.Put("/", articleHandler.Update)
				r.Delete("/", articleHandler.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(secret))
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
