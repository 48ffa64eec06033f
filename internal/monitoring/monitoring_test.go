package monitoring

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/lpellerin/invento/internal/database"
	"github.com/lpellerin/invento/internal/services"
	"github.com/lpellerin/invento/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedArticle(t *testing.T, db *sql.DB, id, clientID, name string, quantity int) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO articles (id, client_id, name, description, price, quantity) VALUES (?, ?, ?, 'd', 1, ?)",
		id, clientID, name, quantity,
	)
	require.NoError(t, err)
}

func TestNewStockWatcher_RejectsBadCron(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := NewStockWatcher(db, websocket.NewHub(), services.NewEventService(db), "every day at noon", 5)
	assert.Error(t, err)
}

func TestStockWatcher_ScanAlertsOwners(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	hub := websocket.NewHub()
	events := services.NewEventService(db)

	seedArticle(t, db, "a1", "alice", "nearly out", 2)
	seedArticle(t, db, "a2", "alice", "plenty", 50)
	seedArticle(t, db, "a3", "bob", "also low", 0)

	w, err := NewStockWatcher(db, hub, events, "* * * * *", 5)
	require.NoError(t, err)
	w.scan()

	aliceEvents, err := events.RecentForClient("alice", 10)
	require.NoError(t, err)
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, "stock.low", aliceEvents[0].Type)
	assert.Equal(t, "warn", aliceEvents[0].Level)
	require.NotNil(t, aliceEvents[0].ArticleID)
	assert.Equal(t, "a1", *aliceEvents[0].ArticleID)

	bobEvents, err := events.RecentForClient("bob", 10)
	require.NoError(t, err)
	require.Len(t, bobEvents, 1)
	assert.Equal(t, "a3", *bobEvents[0].ArticleID)
}

func TestStatUpdater_SampleAggregatesInventory(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()

	_, err := db.Exec("INSERT INTO clients (id, name, surname, email, password_hash) VALUES ('alice', 'D', 'A', 'a@x', 'h')")
	require.NoError(t, err)
	seedArticle(t, db, "a1", "alice", "one", 3)
	seedArticle(t, db, "a2", "alice", "two", 4)

	su := NewStatUpdater(db, hub, time.Hour)
	su.sample()

	snap := su.Latest()
	assert.Equal(t, 1, snap.ClientCount)
	assert.Equal(t, 2, snap.ArticleCount)
	assert.Equal(t, 7, snap.TotalUnits)
	assert.False(t, snap.SampledAt.IsZero())
}

func TestStatsSnapshotEncodesForBroadcast(t *testing.T) {
	t.Parallel()

	b := websocket.Encode("system.stats", StatsSnapshot{ClientCount: 1, ArticleCount: 2, TotalUnits: 3})

	var msg struct {
		Action  string        `json:"action"`
		Payload StatsSnapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(b, &msg))
	assert.Equal(t, "system.stats", msg.Action)
	assert.Equal(t, 3, msg.Payload.TotalUnits)
}
