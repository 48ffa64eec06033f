package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpellerin/invento/internal/api"
	"github.com/lpellerin/invento/internal/config"
	"github.com/lpellerin/invento/internal/database"
	"github.com/lpellerin/invento/internal/logger"
	"github.com/lpellerin/invento/internal/monitoring"
	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db)
	clientService := services.NewClientService(db, cfg.BcryptCost)
	articleService := services.NewArticleService(db, eventService)

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(db, hub, cfg.StatsInterval)
	go statUpdater.Run()

	// Set up and run the background stock watcher
	stockWatcher, err := monitoring.NewStockWatcher(db, hub, eventService, cfg.LowStockCron, cfg.LowStockThreshold)
	if err != nil {
		log.Fatalf("Failed to initialize stock watcher: %v", err)
	}
	go stockWatcher.Run()

	// Set up router
	router := api.NewRouter(cfg, hub, clientService, articleService, eventService, statUpdater)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	statUpdater.Stop()
	stockWatcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
