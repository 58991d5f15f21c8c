package events

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// snowflake builds a user ID created at t.
func snowflake(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-1420070400000)<<22, 10)
}

func TestMemberEmbedFlagsNewAccounts(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	fresh := &discordgo.User{ID: snowflake(now.Add(-48 * time.Hour)), Username: "fresh"}
	embed := memberEmbed(fresh, true, now)
	if embed.Title != "User Joined" || embed.Color != 0xffa500 {
		t.Errorf("expected a flagged join, got %q %#x", embed.Title, embed.Color)
	}
	if len(embed.Fields) != 1 || !strings.Contains(embed.Fields[0].Value, "new account") {
		t.Errorf("missing new account note: %+v", embed.Fields)
	}

	old := &discordgo.User{ID: snowflake(now.Add(-400 * 24 * time.Hour)), Username: "old"}
	embed = memberEmbed(old, true, now)
	if embed.Color != 0x00ff00 || strings.Contains(embed.Fields[0].Value, "new account") {
		t.Errorf("old account should not be flagged: %#x %+v", embed.Color, embed.Fields)
	}

	embed = memberEmbed(fresh, false, now)
	if embed.Title != "User Left" || embed.Color != 0xff0000 {
		t.Errorf("unexpected leave embed %q %#x", embed.Title, embed.Color)
	}
}

func TestModerationActionNilLogger(t *testing.T) {
	var l *Logger
	l.ModerationAction(Action{Kind: "Warn", Moderator: &discordgo.User{ID: "1"}})
}
