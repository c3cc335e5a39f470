package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// Global database handle, set once during startup.
var db *sqlx.DB

// GameRecord is the persisted snapshot of a session. Players and settings
// are stored as JSON blobs: the in-memory Game is the source of truth and
// the record only has to survive a process restart.
type GameRecord struct {
	GameID    string    `db:"game_id"`
	Phase     string    `db:"phase"`
	DayCount  int       `db:"day_count"`
	Winner    string    `db:"winner"`
	Settings  string    `db:"settings"`
	Players   string    `db:"players"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameStore persists session snapshots to SQLite.
type GameStore struct {
	db *sqlx.DB
}

func newGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

func initDB() error {
	schema := `
	PRAGMA journal_mode=WAL;

	CREATE TABLE IF NOT EXISTS game_session (
		game_id TEXT PRIMARY KEY,
		phase TEXT NOT NULL DEFAULT 'waiting',
		day_count INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		settings TEXT NOT NULL DEFAULT '{}',
		players TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	if err != nil {
		log.Printf("initDB error: %v", err)
		return err
	}
	log.Printf("Database initialized successfully")
	return nil
}

// snapshotGame marshals a Game into its persisted form. Callers must hold
// the session lock so the snapshot is consistent.
func snapshotGame(g *Game) (GameRecord, error) {
	settings, err := json.Marshal(g.Settings)
	if err != nil {
		return GameRecord{}, err
	}
	players, err := json.Marshal(g.Players)
	if err != nil {
		return GameRecord{}, err
	}
	return GameRecord{
		GameID:    g.ID,
		Phase:     string(g.Phase),
		DayCount:  g.DayCount,
		Winner:    g.Winner,
		Settings:  string(settings),
		Players:   string(players),
		UpdatedAt: time.Now(),
	}, nil
}

// Save upserts a session snapshot.
func (s *GameStore) Save(rec GameRecord) error {
	_, err := s.db.NamedExec(`
		INSERT INTO game_session (game_id, phase, day_count, winner, settings, players, updated_at)
		VALUES (:game_id, :phase, :day_count, :winner, :settings, :players, :updated_at)
		ON CONFLICT(game_id) DO UPDATE SET
			phase = excluded.phase,
			day_count = excluded.day_count,
			winner = excluded.winner,
			settings = excluded.settings,
			players = excluded.players,
			updated_at = excluded.updated_at`, rec)
	if err != nil {
		return err
	}
	LogDBState("after save: " + rec.GameID)
	return nil
}

// Load rebuilds a Game from its snapshot. Returns (nil, nil) when no
// snapshot exists for the ID. The night ledger and confirmations are not
// persisted; a restored mid-night game starts its night turn over.
func (s *GameStore) Load(gameID string) (*Game, error) {
	var rec GameRecord
	err := s.db.Get(&rec, `SELECT game_id, phase, day_count, winner, settings, players, updated_at
		FROM game_session WHERE game_id = ?`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g := &Game{
		ID:            rec.GameID,
		Phase:         Phase(rec.Phase),
		DayCount:      rec.DayCount,
		Winner:        rec.Winner,
		NightActions:  make(map[ActionKey]NightAction),
		NightConfirms: make(map[string]bool),
	}
	if err := json.Unmarshal([]byte(rec.Settings), &g.Settings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rec.Players), &g.Players); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a session snapshot.
func (s *GameStore) Delete(gameID string) error {
	_, err := s.db.Exec(`DELETE FROM game_session WHERE game_id = ?`, gameID)
	return err
}
