package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MaxCooldown bounds a game's cooldown. Play timestamps older than this can
// never block a bet, which is what lets PruneRounds drop them.
const MaxCooldown = 24 * time.Hour

// GameConfig is the per-guild configuration of one wager game.
type GameConfig struct {
	Enabled   bool
	MinBet    int
	MaxBet    int
	Cooldown  time.Duration
	HouseEdge float64
}

// GameConfig returns a guild's settings for game, falling back to the
// bot-wide defaults when the guild has not configured it.
func (d *DB) GameConfig(guildID, game string) (GameConfig, error) {
	var (
		cfg      GameConfig
		cooldown int64
	)
	err := d.conn.QueryRow(`
		SELECT enabled, min_bet, max_bet, cooldown_seconds, house_edge
		FROM game_config WHERE guild_id = ? AND game = ?
	`, guildID, game).Scan(&cfg.Enabled, &cfg.MinBet, &cfg.MaxBet, &cooldown, &cfg.HouseEdge)
	if errors.Is(err, sql.ErrNoRows) {
		return d.defaults, nil
	}
	if err != nil {
		return GameConfig{}, fmt.Errorf("game config %s/%s: %w", guildID, game, err)
	}
	cfg.Cooldown = time.Duration(cooldown) * time.Second
	return cfg, nil
}

func (d *DB) SetGameConfig(guildID, game string, cfg GameConfig) error {
	if cfg.Cooldown < 0 || cfg.Cooldown > MaxCooldown {
		return fmt.Errorf("cooldown %s outside 0-%s", cfg.Cooldown, MaxCooldown)
	}
	_, err := d.conn.Exec(`
		INSERT INTO game_config (guild_id, game, enabled, min_bet, max_bet, cooldown_seconds, house_edge)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, game) DO UPDATE SET
		enabled = excluded.enabled,
		min_bet = excluded.min_bet,
		max_bet = excluded.max_bet,
		cooldown_seconds = excluded.cooldown_seconds,
		house_edge = excluded.house_edge
	`, guildID, game, cfg.Enabled, cfg.MinBet, cfg.MaxBet, int64(cfg.Cooldown/time.Second), cfg.HouseEdge)
	return err
}

// LastPlayed returns when the user last started game in the guild.
func (d *DB) LastPlayed(userID, guildID, game string) (time.Time, bool, error) {
	var ts int64
	err := d.conn.QueryRow("SELECT last_played FROM game_plays WHERE user_id = ? AND guild_id = ? AND game = ?", userID, guildID, game).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(ts, 0), true, nil
}

func (d *DB) MarkPlayed(userID, guildID, game string, at time.Time) error {
	_, err := d.conn.Exec(`
		INSERT INTO game_plays (user_id, guild_id, game, last_played) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, guild_id, game) DO UPDATE SET last_played = excluded.last_played
	`, userID, guildID, game, at.Unix())
	return err
}

// Round is one settled game in the ledger.
type Round struct {
	ID        string
	UserID    string
	GuildID   string
	Game      string
	Bet       int
	Delta     int
	Outcome   string
	SettledAt time.Time
}

func (d *DB) RecordRound(r Round) error {
	_, err := d.conn.Exec(`
		INSERT INTO game_rounds (round_id, user_id, guild_id, game, bet, delta, outcome, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.GuildID, r.Game, r.Bet, r.Delta, r.Outcome, r.SettledAt.Unix())
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	return nil
}

// RecentRounds returns a user's latest rounds in a guild, newest first.
func (d *DB) RecentRounds(userID, guildID string, limit int) ([]Round, error) {
	rows, err := d.conn.Query(`
		SELECT round_id, game, bet, delta, outcome, settled_at FROM game_rounds
		WHERE user_id = ? AND guild_id = ? ORDER BY settled_at DESC LIMIT ?
	`, userID, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		r := Round{UserID: userID, GuildID: guildID}
		var ts int64
		if err := rows.Scan(&r.ID, &r.Game, &r.Bet, &r.Delta, &r.Outcome, &ts); err != nil {
			return nil, err
		}
		r.SettledAt = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoundStats summarises the ledger since a point in time. houseNet is the
// house's result, the negated sum of player deltas.
func (d *DB) RoundStats(since time.Time) (rounds int, houseNet int, err error) {
	err = d.conn.QueryRow("SELECT COUNT(*), COALESCE(-SUM(delta), 0) FROM game_rounds WHERE settled_at >= ?", since.Unix()).Scan(&rounds, &houseNet)
	return rounds, houseNet, err
}

// PruneRounds deletes ledger rows older than before. Play timestamps go too,
// but only once they are older than MaxCooldown as well.
func (d *DB) PruneRounds(before time.Time) (int64, error) {
	res, err := d.conn.Exec("DELETE FROM game_rounds WHERE settled_at < ?", before.Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	plays := min(before.Unix(), time.Now().Add(-MaxCooldown).Unix())
	if _, err := d.conn.Exec("DELETE FROM game_plays WHERE last_played < ?", plays); err != nil {
		return n, err
	}
	return n, nil
}
