package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"log"
)

type DB struct {
	conn     *sql.DB
	defaults GameConfig
}

// New opens the SQLite database at dsn and creates the schema. defaults is
// the game configuration used for guilds that have not configured a game.
func New(dsn string, defaults GameConfig) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{conn: db, defaults: defaults}
	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database connected: %s", dsn)
	return d, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS permissions (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		node TEXT NOT NULL,
		PRIMARY KEY (guild_id, user_id, node)
	);`,
	`CREATE TABLE IF NOT EXISTS economy (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		balance INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, guild_id)
	);`,
	`CREATE TABLE IF NOT EXISTS game_config (
		guild_id TEXT NOT NULL,
		game TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		min_bet INTEGER NOT NULL,
		max_bet INTEGER NOT NULL,
		cooldown_seconds INTEGER NOT NULL DEFAULT 0,
		house_edge REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, game)
	);`,
	`CREATE TABLE IF NOT EXISTS game_plays (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		game TEXT NOT NULL,
		last_played INTEGER NOT NULL,
		PRIMARY KEY (user_id, guild_id, game)
	);`,
	`CREATE TABLE IF NOT EXISTS game_rounds (
		round_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		game TEXT NOT NULL,
		bet INTEGER NOT NULL,
		delta INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		settled_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_game_rounds_settled ON game_rounds (settled_at);`,
	`CREATE TABLE IF NOT EXISTS reward_claims (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		claimed_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, guild_id, kind)
	);`,
	`CREATE TABLE IF NOT EXISTS levels (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		xp INTEGER NOT NULL DEFAULT 0,
		last_message INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, guild_id)
	);`,
	`CREATE TABLE IF NOT EXISTS warnings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL UNIQUE,
		reason TEXT NOT NULL,
		opened_at INTEGER NOT NULL,
		closed_by TEXT,
		closed_at INTEGER
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tickets_one_open
		ON tickets (guild_id, user_id) WHERE closed_at IS NULL;`,
}

func (d *DB) migrate() error {
	for _, stmt := range schema {
		if _, err := d.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	log.Println("Database connection closing.")
	return d.conn.Close()
}

// GrantPermission gives a user a permission node within a guild.
func (d *DB) GrantPermission(guildID, userID, node string) error {
	_, err := d.conn.Exec("INSERT OR IGNORE INTO permissions (guild_id, user_id, node) VALUES (?, ?, ?)", guildID, userID, node)
	return err
}

// RevokePermission takes a permission node away. Revoking a node the user
// does not hold is not an error.
func (d *DB) RevokePermission(guildID, userID, node string) error {
	_, err := d.conn.Exec("DELETE FROM permissions WHERE guild_id = ? AND user_id = ? AND node = ?", guildID, userID, node)
	return err
}

func (d *DB) HasPermission(guildID, userID, node string) (bool, error) {
	var one int
	err := d.conn.QueryRow("SELECT 1 FROM permissions WHERE guild_id = ? AND user_id = ? AND node = ?", guildID, userID, node).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Permissions lists a user's nodes in a guild, sorted.
func (d *DB) Permissions(guildID, userID string) ([]string, error) {
	rows, err := d.conn.Query("SELECT node FROM permissions WHERE guild_id = ? AND user_id = ? ORDER BY node", guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var node string
		if err := rows.Scan(&node); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}
