package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// GetBalance returns a user's balance in a guild. Unknown users have 0.
func (d *DB) GetBalance(userID, guildID string) (int, error) {
	var balance int
	err := d.conn.QueryRow("SELECT balance FROM economy WHERE user_id = ? AND guild_id = ?", userID, guildID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AdjustBalance adds delta (possibly negative) to a balance in one statement.
// It never checks the result against zero.
func (d *DB) AdjustBalance(userID, guildID string, delta int) error {
	_, err := d.conn.Exec(`
		INSERT INTO economy (user_id, guild_id, balance) VALUES (?, ?, ?)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET balance = balance + excluded.balance
	`, userID, guildID, delta)
	if err != nil {
		return fmt.Errorf("adjust balance for %s: %w", userID, err)
	}
	return nil
}

// Transfer moves money between two members of the same guild.
func (d *DB) Transfer(guildID, fromID, toID string, amount int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE economy SET balance = balance - ? WHERE user_id = ? AND guild_id = ? AND balance >= ?", amount, fromID, guildID, amount)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientFunds
	}

	_, err = tx.Exec(`
		INSERT INTO economy (user_id, guild_id, balance) VALUES (?, ?, ?)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET balance = balance + excluded.balance
	`, toID, guildID, amount)
	if err != nil {
		return err
	}

	return tx.Commit()
}

type BalanceEntry struct {
	UserID  string
	Balance int
}

// TopBalances returns the richest members of a guild.
func (d *DB) TopBalances(guildID string, limit int) ([]BalanceEntry, error) {
	rows, err := d.conn.Query("SELECT user_id, balance FROM economy WHERE guild_id = ? ORDER BY balance DESC LIMIT ?", guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceEntry
	for rows.Next() {
		var e BalanceEntry
		if err := rows.Scan(&e.UserID, &e.Balance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ClaimReward pays a periodic reward (daily, weekly, work...) when the
// cooldown since the previous claim of that kind has passed. When it has not,
// ok is false and next is when the reward becomes available.
func (d *DB) ClaimReward(userID, guildID, kind string, amount int, cooldown time.Duration, now time.Time) (next time.Time, ok bool, err error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return time.Time{}, false, err
	}
	defer tx.Rollback()

	var last int64
	err = tx.QueryRow("SELECT claimed_at FROM reward_claims WHERE user_id = ? AND guild_id = ? AND kind = ?", userID, guildID, kind).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return time.Time{}, false, err
	default:
		next = time.Unix(last, 0).Add(cooldown)
		if now.Before(next) {
			return next, false, nil
		}
	}

	_, err = tx.Exec(`
		INSERT INTO reward_claims (user_id, guild_id, kind, claimed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, guild_id, kind) DO UPDATE SET claimed_at = excluded.claimed_at
	`, userID, guildID, kind, now.Unix())
	if err != nil {
		return time.Time{}, false, err
	}
	_, err = tx.Exec(`
		INSERT INTO economy (user_id, guild_id, balance) VALUES (?, ?, ?)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET balance = balance + excluded.balance
	`, userID, guildID, amount)
	if err != nil {
		return time.Time{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, false, err
	}
	return now.Add(cooldown), true, nil
}
