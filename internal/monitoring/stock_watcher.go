package monitoring

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// StockWatcher scans for low-stock articles on a cron schedule and records a
// warning event per affected article, pushing a notification to its owner.
type StockWatcher struct {
	db        *sql.DB
	hub       *websocket.Hub
	eventSvc  services.EventServiceProvider
	schedule  cron.Schedule
	threshold int
	nextRun   time.Time
	ticker    *time.Ticker
	done      chan bool
}

// NewStockWatcher creates a new StockWatcher. The cron expression uses the
// standard five-field format.
func NewStockWatcher(db *sql.DB, hub *websocket.Hub, eventSvc services.EventServiceProvider, cronExpr string, threshold int) (*StockWatcher, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	return &StockWatcher{
		db:        db,
		hub:       hub,
		eventSvc:  eventSvc,
		schedule:  schedule,
		threshold: threshold,
		nextRun:   schedule.Next(time.Now()),
		done:      make(chan bool),
	}, nil
}

// Run starts the watcher's ticking loop.
func (w *StockWatcher) Run() {
	log.Info().Int("threshold", w.threshold).Msg("Starting background stock watcher...")
	w.ticker = time.NewTicker(30 * time.Second)
	defer w.ticker.Stop()

	for {
		select {
		case <-w.done:
			log.Info().Msg("Stopping background stock watcher.")
			return
		case <-w.ticker.C:
			now := time.Now()
			if now.After(w.nextRun) {
				w.scan()
				w.nextRun = w.schedule.Next(now)
			}
		}
	}
}

// Stop halts the watcher.
func (w *StockWatcher) Stop() {
	w.done <- true
}

// scan queries for articles at or below the threshold and alerts their owners.
func (w *StockWatcher) scan() {
	rows, err := w.db.Query(`
		SELECT id, client_id, name, quantity FROM articles WHERE quantity <= ?
	`, w.threshold)
	if err != nil {
		log.Error().Err(err).Msg("StockWatcher: Failed to query low-stock articles")
		return
	}
	defer rows.Close()

	type lowStock struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		clientID string
	}

	var hits []lowStock
	for rows.Next() {
		var h lowStock
		if err := rows.Scan(&h.ID, &h.clientID, &h.Name, &h.Quantity); err != nil {
			log.Error().Err(err).Msg("StockWatcher: Failed to scan row")
			return
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("StockWatcher: Row iteration failed")
		return
	}

	for _, h := range hits {
		msg := fmt.Sprintf("Stock for '%s' is low (%d remaining).", h.Name, h.Quantity)
		w.eventSvc.Record("stock.low", "warn", msg, h.clientID, &h.ID)
		w.hub.BroadcastTo(h.clientID, websocket.Encode("stock.low", h))
	}

	if len(hits) > 0 {
		log.Info().Int("articles", len(hits)).Msg("StockWatcher: Low-stock alerts issued")
	}
}
