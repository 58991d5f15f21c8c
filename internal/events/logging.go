package events

import (
	"fmt"
	"log"
	"time"

	"guildbot/internal/discord"

	"github.com/bwmarrin/discordgo"
)

type Logger struct {
	Session      *discordgo.Session
	LogChannelID string
}

func NewLogger(s *discordgo.Session, cfg *discord.Config) *Logger {
	return &Logger{
		Session:      s,
		LogChannelID: cfg.LogChannelID,
	}
}

// Accounts younger than this are flagged when they join.
const newAccountAge = 7 * 24 * time.Hour

func (l *Logger) OnGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	l.send(s, memberEmbed(m.User, true, time.Now()))
	log.Printf("[EVENT] User Joined: %s (%s) | Guild: %s", m.User.Username, m.User.ID, m.GuildID)
}

func (l *Logger) OnGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	l.send(s, memberEmbed(m.User, false, time.Now()))
	log.Printf("[EVENT] User Left: %s (%s) | Guild: %s", m.User.Username, m.User.ID, m.GuildID)
}

func memberEmbed(u *discordgo.User, joined bool, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "User Left",
		Description: fmt.Sprintf("%s (%s) has left the server.", u.Mention(), u.Username),
		Color:       0xff0000,
		Timestamp:   now.Format(time.RFC3339),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("")},
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + u.ID},
	}
	if joined {
		embed.Title = "User Joined"
		embed.Description = fmt.Sprintf("%s (%s) has joined the server.", u.Mention(), u.Username)
		embed.Color = 0x00ff00
	}

	created, err := discordgo.SnowflakeTimestamp(u.ID)
	if err != nil {
		return embed
	}
	age := fmt.Sprintf("<t:%d:R>", created.Unix())
	if joined && now.Sub(created) < newAccountAge {
		age += " ⚠️ new account"
		embed.Color = 0xffa500
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Account Created", Value: age, Inline: true})
	return embed
}

// Action is a moderation action taken through the bot.
type Action struct {
	Kind      string // "Kick", "Ban", "Timeout", "Warn", "Purge", "Permission", "Money", "Ticket"
	Moderator *discordgo.User
	Target    *discordgo.User
	Reason    string
	Detail    string
}

var actionColors = map[string]int{
	"Kick":       0xffa500,
	"Ban":        0xff0000,
	"Timeout":    0xffff00,
	"Warn":       0xffd700,
	"Purge":      0x5865f2,
	"Permission": 0x9b59b6,
	"Money":      0x2ecc71,
	"Ticket":     0x1abc9c,
}

// ModerationAction posts an audit entry to the log channel. Safe to call on a
// nil Logger.
func (l *Logger) ModerationAction(a Action) {
	if l == nil {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Moderation: " + a.Kind,
		Color:     actionColors[a.Kind],
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Moderator", Value: a.Moderator.Mention(), Inline: true},
		},
	}
	if a.Target != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "User", Value: fmt.Sprintf("%s (%s)", a.Target.Mention(), a.Target.Username), Inline: true})
	}
	if a.Reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: a.Reason})
	}
	if a.Detail != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: a.Detail})
	}
	l.send(l.Session, embed)

	target := "-"
	if a.Target != nil {
		target = a.Target.ID
	}
	log.Printf("[MODERATION] %s by %s | Target: %s | %s", a.Kind, a.Moderator.ID, target, a.Reason)
}

func (l *Logger) send(s *discordgo.Session, embed *discordgo.MessageEmbed) {
	if l.LogChannelID == "" {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(l.LogChannelID, embed); err != nil {
		log.Printf("Failed to post to log channel %s: %v", l.LogChannelID, err)
	}
}
