package monitoring

import (
	"database/sql"
	"sync"
	"time"

	"github.com/lpellerin/invento/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatsSnapshot is one sample of host and inventory metrics.
type StatsSnapshot struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	ClientCount   int       `json:"clientCount"`
	ArticleCount  int       `json:"articleCount"`
	TotalUnits    int       `json:"totalUnits"`
	SampledAt     time.Time `json:"sampledAt"`
}

// StatUpdater periodically samples host load and inventory aggregates,
// broadcasting each sample over the websocket hub.
type StatUpdater struct {
	db       *sql.DB
	hub      *websocket.Hub
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool

	mu     sync.RWMutex
	latest StatsSnapshot
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(db *sql.DB, hub *websocket.Hub, interval time.Duration) *StatUpdater {
	return &StatUpdater{
		db:       db,
		hub:      hub,
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.sample()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.sample()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Latest returns the most recent snapshot for the status endpoint.
func (su *StatUpdater) Latest() StatsSnapshot {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}

func (su *StatUpdater) sample() {
	snap := StatsSnapshot{SampledAt: time.Now().UTC()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not sample CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("StatUpdater: Could not sample memory usage")
	}

	row := su.db.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM clients),
			(SELECT COUNT(1) FROM articles),
			(SELECT COALESCE(SUM(quantity), 0) FROM articles)
	`)
	if err := row.Scan(&snap.ClientCount, &snap.ArticleCount, &snap.TotalUnits); err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to query inventory aggregates")
		return
	}

	su.mu.Lock()
	su.latest = snap
	su.mu.Unlock()

	su.hub.Broadcast <- websocket.Encode("system.stats", snap)
}
