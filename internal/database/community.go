package database

import (
	"database/sql"
	"errors"
	"time"
)

// AddXP credits xp to a member unless they earned XP less than cooldown ago.
// It returns the member's total XP and whether anything was credited.
func (d *DB) AddXP(userID, guildID string, xp int, cooldown time.Duration, now time.Time) (total int, credited bool, err error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var last int64
	err = tx.QueryRow("SELECT xp, last_message FROM levels WHERE user_id = ? AND guild_id = ?", userID, guildID).Scan(&total, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	if err == nil && now.Sub(time.Unix(last, 0)) < cooldown {
		return total, false, nil
	}

	total += xp
	_, err = tx.Exec(`
		INSERT INTO levels (user_id, guild_id, xp, last_message) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET xp = excluded.xp, last_message = excluded.last_message
	`, userID, guildID, total, now.Unix())
	if err != nil {
		return 0, false, err
	}
	return total, true, tx.Commit()
}

func (d *DB) XP(userID, guildID string) (int, error) {
	var xp int
	err := d.conn.QueryRow("SELECT xp FROM levels WHERE user_id = ? AND guild_id = ?", userID, guildID).Scan(&xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return xp, err
}

type Warning struct {
	ID          int64
	UserID      string
	ModeratorID string
	Reason      string
	CreatedAt   time.Time
}

// AddWarning stores a warning and returns how many the user now has.
func (d *DB) AddWarning(guildID string, w Warning) (int, error) {
	_, err := d.conn.Exec(`
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at) VALUES (?, ?, ?, ?, ?)
	`, guildID, w.UserID, w.ModeratorID, w.Reason, w.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	var n int
	err = d.conn.QueryRow("SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ?", guildID, w.UserID).Scan(&n)
	return n, err
}

func (d *DB) Warnings(guildID, userID string) ([]Warning, error) {
	rows, err := d.conn.Query(`
		SELECT id, moderator_id, reason, created_at FROM warnings
		WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Warning
	for rows.Next() {
		w := Warning{UserID: userID}
		var ts int64
		if err := rows.Scan(&w.ID, &w.ModeratorID, &w.Reason, &ts); err != nil {
			return nil, err
		}
		w.CreatedAt = time.Unix(ts, 0)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (d *DB) ClearWarnings(guildID, userID string) (int64, error) {
	res, err := d.conn.Exec("DELETE FROM warnings WHERE guild_id = ? AND user_id = ?", guildID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ticket is a private support channel between one member and the staff.
type Ticket struct {
	ID        int64
	GuildID   string
	UserID    string
	ChannelID string
	Reason    string
	OpenedAt  time.Time
}

// ErrTicketOpen means the member already has an open ticket in the guild.
var ErrTicketOpen = errors.New("ticket already open")

// OpenTicket records a new ticket and returns its ID. A member can hold one
// open ticket per guild.
func (d *DB) OpenTicket(t Ticket) (int64, error) {
	res, err := d.conn.Exec(`
		INSERT INTO tickets (guild_id, user_id, channel_id, reason, opened_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM tickets WHERE guild_id = ? AND user_id = ? AND closed_at IS NULL)
	`, t.GuildID, t.UserID, t.ChannelID, t.Reason, t.OpenedAt.Unix(), t.GuildID, t.UserID)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrTicketOpen
	}
	return res.LastInsertId()
}

// OpenTicketFor returns the member's open ticket in the guild, if any.
func (d *DB) OpenTicketFor(guildID, userID string) (Ticket, bool, error) {
	return d.scanTicket(`
		SELECT id, guild_id, user_id, channel_id, reason, opened_at FROM tickets
		WHERE guild_id = ? AND user_id = ? AND closed_at IS NULL
	`, guildID, userID)
}

// TicketByChannel returns the open ticket that lives in channelID, if any.
func (d *DB) TicketByChannel(channelID string) (Ticket, bool, error) {
	return d.scanTicket(`
		SELECT id, guild_id, user_id, channel_id, reason, opened_at FROM tickets
		WHERE channel_id = ? AND closed_at IS NULL
	`, channelID)
}

func (d *DB) scanTicket(query string, args ...any) (Ticket, bool, error) {
	var (
		t      Ticket
		opened int64
	)
	err := d.conn.QueryRow(query, args...).Scan(&t.ID, &t.GuildID, &t.UserID, &t.ChannelID, &t.Reason, &opened)
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	t.OpenedAt = time.Unix(opened, 0)
	return t, true, nil
}

// CloseTicket marks the ticket in channelID closed. It reports false when
// there was no open ticket there.
func (d *DB) CloseTicket(channelID, closedBy string, at time.Time) (bool, error) {
	res, err := d.conn.Exec(`
		UPDATE tickets SET closed_by = ?, closed_at = ? WHERE channel_id = ? AND closed_at IS NULL
	`, closedBy, at.Unix(), channelID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
