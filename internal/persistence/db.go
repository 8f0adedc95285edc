// Package persistence provides SQLite-backed save slots. Each slot
// holds one compressed snapshot plus queryable battle history rows.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/dominion/internal/engine"
	"github.com/talgya/dominion/internal/snapshot"
)

// DB wraps a SQLite connection for save storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		name TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		seed INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		save_name TEXT NOT NULL,
		turn INTEGER NOT NULL,
		attacker TEXT NOT NULL,
		defender TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		winner TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_battles_save ON battles(save_name, turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SlotInfo describes one save slot.
type SlotInfo struct {
	Name    string `db:"name" json:"name"`
	GameID  string `db:"game_id" json:"game_id"`
	Seed    int64  `db:"seed" json:"seed"`
	Turn    int    `db:"turn" json:"turn"`
	SavedAt string `db:"saved_at" json:"saved_at"`
}

// BattleRow is one archived battle.
type BattleRow struct {
	Turn     int    `db:"turn" json:"turn"`
	Attacker string `db:"attacker" json:"attacker"`
	Defender string `db:"defender" json:"defender"`
	X        int    `db:"x" json:"x"`
	Y        int    `db:"y" json:"y"`
	Winner   string `db:"winner" json:"winner"`
}

// SaveSlot captures the game into the named slot, replacing any
// previous save under that name, and archives its recent battles.
func (db *DB) SaveSlot(name string, g *engine.Game) error {
	data, err := snapshot.Encode(snapshot.Capture(g))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO saves (name, game_id, seed, turn, saved_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, g.ID, g.Seed, g.Turn, time.Now().UTC().Format(time.RFC3339), data,
	)
	if err != nil {
		return fmt.Errorf("insert save %q: %w", name, err)
	}

	if _, err := tx.Exec("DELETE FROM battles WHERE save_name = ?", name); err != nil {
		return err
	}
	for _, b := range g.RecentBattles(snapshot.LogWindow) {
		_, err := tx.Exec(
			`INSERT INTO battles (save_name, turn, attacker, defender, x, y, winner)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			name, b.Turn, b.Attacker, b.Defender, b.Location.X, b.Location.Y, b.Winner,
		)
		if err != nil {
			return fmt.Errorf("archive battle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("game saved", "slot", name, "turn", g.Turn, "bytes", len(data))
	return nil
}

// LoadSlot reads and decodes the named slot's snapshot.
func (db *DB) LoadSlot(name string) (*snapshot.Snapshot, error) {
	var data []byte
	if err := db.conn.Get(&data, "SELECT data FROM saves WHERE name = ?", name); err != nil {
		return nil, fmt.Errorf("load save %q: %w", name, err)
	}
	return snapshot.Decode(data)
}

// ListSlots returns every save slot, most recent first.
func (db *DB) ListSlots() ([]SlotInfo, error) {
	var slots []SlotInfo
	err := db.conn.Select(&slots,
		"SELECT name, game_id, seed, turn, saved_at FROM saves ORDER BY saved_at DESC")
	return slots, err
}

// DeleteSlot removes a save slot and its archived battles.
func (db *DB) DeleteSlot(name string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM saves WHERE name = ?", name); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM battles WHERE save_name = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}

// BattleHistory returns archived battles for a slot, newest first.
func (db *DB) BattleHistory(name string, limit int) ([]BattleRow, error) {
	var rows []BattleRow
	err := db.conn.Select(&rows,
		`SELECT turn, attacker, defender, x, y, winner
		 FROM battles WHERE save_name = ? ORDER BY turn DESC, id DESC LIMIT ?`,
		name, limit,
	)
	return rows, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
