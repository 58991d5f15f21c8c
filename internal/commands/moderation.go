package commands

import (
	"fmt"
	"log"
	"strings"
	"time"

	"guildbot/internal/database"
	"guildbot/internal/events"

	"github.com/bwmarrin/discordgo"
)

var (
	minPurge   = 1.0
	minTimeout = 1.0
)

// Discord limits: timeouts last at most 28 days, bulk deletes only reach
// messages younger than 14 days.
const (
	maxTimeoutMinutes = 28 * 24 * 60
	bulkDeleteWindow  = 14 * 24 * time.Hour
)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: description, Required: true}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the action", Required: required}
}

// ModerationCommands defines all moderation-related slash commands.
var ModerationCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "kick",
		Description: "Kick a user from the server",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The user to kick"), reasonOption(false)},
	},
	{
		Name:        "ban",
		Description: "Ban a user from the server",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The user to ban"), reasonOption(false)},
	},
	{
		Name:        "timeout",
		Description: "Timeout a user for a duration",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The user to timeout"),
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "duration",
				Description: "Duration in minutes (up to 28 days)",
				Required:    true,
				MinValue:    &minTimeout,
				MaxValue:    maxTimeoutMinutes,
			},
			reasonOption(false),
		},
	},
	{
		Name:        "purge",
		Description: "Delete recent messages in this channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Number of messages to delete (1-100)",
				Required:    true,
				MinValue:    &minPurge,
				MaxValue:    100,
			},
		},
	},
	{
		Name:        "warn",
		Description: "Warn a user",
		Options:     []*discordgo.ApplicationCommandOption{userOption("The user to warn"), reasonOption(true)},
	},
	{
		Name:        "warnings",
		Description: "List or clear a user's warnings",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("The user to look up"),
			{Type: discordgo.ApplicationCommandOptionBoolean, Name: "clear", Description: "Delete all of the user's warnings"},
		},
	},
}

// optionMap indexes interaction options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, o := range options {
		m[o.Name] = o
	}
	return m
}

// HandleModerationCommand routes moderation commands to their handlers.
func HandleModerationCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)

	reason := "No reason provided"
	if o, ok := opts["reason"]; ok && o.StringValue() != "" {
		reason = o.StringValue()
	}

	var target *discordgo.User
	if o, ok := opts["user"]; ok {
		target = o.UserValue(s)
		if msg := moderationGuard(s, i, data.Name, target); msg != "" {
			respondError(s, i, msg)
			return
		}
	}

	switch data.Name {
	case "kick", "ban":
		handlePunish(s, i, data.Name, target, reason)
	case "timeout":
		handleTimeout(s, i, target, int(opts["duration"].IntValue()), reason)
	case "purge":
		handlePurge(s, i, int(opts["amount"].IntValue()))
	case "warn":
		handleWarn(s, i, target, reason)
	case "warnings":
		wipe := false
		if o, ok := opts["clear"]; ok {
			wipe = o.BoolValue()
		}
		handleWarnings(s, i, target, wipe)
	}
}

// moderationGuard returns why target cannot be acted on, or "" if it can.
// Looking up warnings is allowed for anyone.
func moderationGuard(s *discordgo.Session, i *discordgo.InteractionCreate, command string, target *discordgo.User) string {
	if command == "warnings" {
		return ""
	}
	switch {
	case target.ID == i.Member.User.ID:
		return "You cannot use this on yourself."
	case s.State != nil && s.State.User != nil && target.ID == s.State.User.ID:
		return "You cannot use this on me."
	case target.ID == OwnerID:
		return "You cannot use this on the bot owner."
	}
	return ""
}

func handlePunish(s *discordgo.Session, i *discordgo.InteractionCreate, kind string, user *discordgo.User, reason string) {
	var (
		err  error
		icon string
		verb string
	)
	if kind == "ban" {
		err = s.GuildBanCreateWithReason(i.GuildID, user.ID, reason, 0)
		icon, verb = "🔨", "Banned"
	} else {
		err = s.GuildMemberDeleteWithReason(i.GuildID, user.ID, reason)
		icon, verb = "👢", "Kicked"
	}
	if err != nil {
		log.Printf("[MODERATION ERROR] %s %s: %v", kind, user.ID, err)
		respondError(s, i, fmt.Sprintf("Failed to %s user: %v", kind, err))
		return
	}

	AuditLog.ModerationAction(events.Action{Kind: strings.ToUpper(kind[:1]) + kind[1:], Moderator: i.Member.User, Target: user, Reason: reason})
	respondSuccess(s, i, fmt.Sprintf("%s %s **%s**. Reason: %s", icon, verb, user.Username, reason))
}

func handleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User, minutes int, reason string) {
	minutes = min(max(minutes, 1), maxTimeoutMinutes)
	until := time.Now().Add(time.Duration(minutes) * time.Minute)

	if err := s.GuildMemberTimeout(i.GuildID, user.ID, &until); err != nil {
		log.Printf("[MODERATION ERROR] timeout %s: %v", user.ID, err)
		respondError(s, i, fmt.Sprintf("Failed to timeout user: %v", err))
		return
	}

	AuditLog.ModerationAction(events.Action{Kind: "Timeout", Moderator: i.Member.User, Target: user, Reason: reason, Detail: fmt.Sprintf("%d minutes", minutes)})
	respondSuccess(s, i, fmt.Sprintf("⏳ Timed out **%s** until <t:%d:f>.", user.Username, until.Unix()))
}

// purgeable returns the IDs of messages young enough to bulk delete.
func purgeable(messages []*discordgo.Message, now time.Time) []string {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		if now.Sub(msg.Timestamp) < bulkDeleteWindow {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

func handlePurge(s *discordgo.Session, i *discordgo.InteractionCreate, amount int) {
	messages, err := s.ChannelMessages(i.ChannelID, amount, "", "", "")
	if err != nil {
		respondError(s, i, "Error fetching messages to purge.")
		return
	}

	ids := purgeable(messages, time.Now())
	switch len(ids) {
	case 0:
		respondError(s, i, "No messages younger than 14 days to delete.")
		return
	case 1:
		err = s.ChannelMessageDelete(i.ChannelID, ids[0])
	default:
		err = s.ChannelMessagesBulkDelete(i.ChannelID, ids)
	}
	if err != nil {
		log.Printf("[MODERATION ERROR] purge %s: %v", i.ChannelID, err)
		respondError(s, i, "Error deleting messages.")
		return
	}

	AuditLog.ModerationAction(events.Action{Kind: "Purge", Moderator: i.Member.User, Detail: fmt.Sprintf("%d messages in <#%s>", len(ids), i.ChannelID)})
	msg := fmt.Sprintf("🗑️ Purged **%d** messages.", len(ids))
	if skipped := len(messages) - len(ids); skipped > 0 {
		msg += fmt.Sprintf(" Skipped %d older than 14 days.", skipped)
	}
	respondEphemeral(s, i, msg)
}

func handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User, reason string) {
	count, err := DB.AddWarning(i.GuildID, database.Warning{
		UserID:      user.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("[MODERATION ERROR] warn %s: %v", user.ID, err)
		respondError(s, i, "Failed to store the warning.")
		return
	}

	AuditLog.ModerationAction(events.Action{Kind: "Warn", Moderator: i.Member.User, Target: user, Reason: reason, Detail: fmt.Sprintf("Warning #%d", count)})
	respondSuccess(s, i, fmt.Sprintf("⚠️ Warned **%s** (%d total). Reason: %s", user.Username, count, reason))
}

func handleWarnings(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User, wipe bool) {
	if wipe {
		n, err := DB.ClearWarnings(i.GuildID, user.ID)
		if err != nil {
			log.Printf("[MODERATION ERROR] clear warnings %s: %v", user.ID, err)
			respondError(s, i, "Failed to clear warnings.")
			return
		}
		respondSuccess(s, i, fmt.Sprintf("🧹 Cleared %d warning(s) for **%s**.", n, user.Username))
		return
	}

	warnings, err := DB.Warnings(i.GuildID, user.ID)
	if err != nil {
		log.Printf("[MODERATION ERROR] list warnings %s: %v", user.ID, err)
		respondError(s, i, "Failed to load warnings.")
		return
	}
	if len(warnings) == 0 {
		respondSuccess(s, i, fmt.Sprintf("**%s** has no warnings.", user.Username))
		return
	}

	var b strings.Builder
	for _, w := range warnings {
		fmt.Fprintf(&b, "**#%d** <t:%d:d> by <@%s>: %s\n", w.ID, w.CreatedAt.Unix(), w.ModeratorID, w.Reason)
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Warnings for %s (%d)", user.Username, len(warnings)),
		Description: b.String(),
		Color:       0xFFD700,
	})
}
