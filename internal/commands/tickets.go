package commands

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"guildbot/internal/database"
	"guildbot/internal/events"

	"github.com/bwmarrin/discordgo"
)

// TicketCategoryID is the channel category new tickets are created under.
// Empty puts them at the top of the server.
var TicketCategoryID string

var TicketCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "ticket",
		Description: "Talk to the staff in a private channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "open",
				Description: "Open a support ticket",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "What do you need help with?", Required: true, MaxLength: 200},
				},
			},
			{Name: "close", Description: "Close the ticket in this channel", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	},
}

const ticketAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory | discordgo.PermissionAttachFiles

// ticketOverwrites hides the channel from @everyone and opens it to the
// member and the bot. Staff see it through Administrator.
func ticketOverwrites(guildID, userID, botID string) []*discordgo.PermissionOverwrite {
	return []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketAccess},
		{ID: botID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketAccess | discordgo.PermissionManageChannels},
	}
}

var unsafeChannelChars = regexp.MustCompile(`[^a-z0-9-]+`)

// ticketChannelName builds a valid text channel name from the username.
func ticketChannelName(username string) string {
	name := unsafeChannelChars.ReplaceAllString(strings.ToLower(username), "")
	if name == "" {
		name = "member"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return "ticket-" + name
}

func HandleTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	if DB == nil {
		respondError(s, i, "Database not initialized.")
		return
	}

	subcmd := data.Options[0]
	switch subcmd.Name {
	case "open":
		handleTicketOpen(s, i, optionMap(subcmd.Options)["reason"].StringValue())
	case "close":
		handleTicketClose(s, i)
	}
}

func handleTicketOpen(s *discordgo.Session, i *discordgo.InteractionCreate, reason string) {
	user := i.Member.User
	if t, ok, err := DB.OpenTicketFor(i.GuildID, user.ID); err != nil {
		log.Printf("[TICKET ERROR] Guild %s | lookup %s: %v", i.GuildID, user.ID, err)
		respondError(s, i, "Failed to check your tickets.")
		return
	} else if ok {
		respondError(s, i, fmt.Sprintf("You already have an open ticket: <#%s>", t.ChannelID))
		return
	}

	ch, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 ticketChannelName(user.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket for %s: %s", user.Username, reason),
		ParentID:             TicketCategoryID,
		PermissionOverwrites: ticketOverwrites(i.GuildID, user.ID, s.State.User.ID),
	})
	if err != nil {
		log.Printf("[TICKET ERROR] Guild %s | create channel for %s: %v", i.GuildID, user.ID, err)
		respondError(s, i, "Failed to create the ticket channel.")
		return
	}

	id, err := DB.OpenTicket(database.Ticket{GuildID: i.GuildID, UserID: user.ID, ChannelID: ch.ID, Reason: reason, OpenedAt: time.Now()})
	if err != nil {
		// Lost a race with another /ticket open, or the insert failed.
		if _, delErr := s.ChannelDelete(ch.ID); delErr != nil {
			log.Printf("[TICKET ERROR] Guild %s | remove orphan channel %s: %v", i.GuildID, ch.ID, delErr)
		}
		if errors.Is(err, database.ErrTicketOpen) {
			respondError(s, i, "You already have an open ticket.")
			return
		}
		log.Printf("[TICKET ERROR] Guild %s | record ticket for %s: %v", i.GuildID, user.ID, err)
		respondError(s, i, "Failed to open the ticket.")
		return
	}

	log.Printf("[TICKET OPEN] Guild %s | #%d %s -> %s", i.GuildID, id, user.Username, ch.ID)
	_, err = s.ChannelMessageSendEmbed(ch.ID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 Ticket #%d", id),
		Description: fmt.Sprintf("%s, the staff will be with you shortly. Use `/ticket close` here when you are done.", user.Mention()),
		Color:       0x1abc9c,
		Fields:      []*discordgo.MessageEmbedField{{Name: "Reason", Value: reason}},
	})
	if err != nil {
		log.Printf("[TICKET ERROR] Guild %s | welcome message in %s: %v", i.GuildID, ch.ID, err)
	}
	AuditLog.ModerationAction(events.Action{Kind: "Ticket", Moderator: user, Reason: reason, Detail: fmt.Sprintf("Opened #%d in <#%s>", id, ch.ID)})
	respondEphemeral(s, i, fmt.Sprintf("🎫 Ticket opened: <#%s>", ch.ID))
}

// canCloseTicket lets the member who opened a ticket close it, as well as
// anyone who may manage channels.
func canCloseTicket(member *discordgo.Member, t database.Ticket) bool {
	if member.User.ID == t.UserID || member.User.ID == OwnerID {
		return true
	}
	return member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageChannels) != 0
}

func handleTicketClose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	t, ok, err := DB.TicketByChannel(i.ChannelID)
	if err != nil {
		log.Printf("[TICKET ERROR] Guild %s | lookup channel %s: %v", i.GuildID, i.ChannelID, err)
		respondError(s, i, "Failed to look up this ticket.")
		return
	}
	if !ok {
		respondError(s, i, "This channel is not an open ticket.")
		return
	}
	if !canCloseTicket(i.Member, t) {
		respondError(s, i, "Only the ticket's author or staff can close it.")
		return
	}

	if closed, err := DB.CloseTicket(t.ChannelID, i.Member.User.ID, time.Now()); err != nil {
		log.Printf("[TICKET ERROR] Guild %s | close #%d: %v", i.GuildID, t.ID, err)
		respondError(s, i, "Failed to close the ticket.")
		return
	} else if !closed {
		respondError(s, i, "This ticket is already closed.")
		return
	}

	log.Printf("[TICKET CLOSE] Guild %s | #%d by %s", i.GuildID, t.ID, i.Member.User.Username)
	AuditLog.ModerationAction(events.Action{Kind: "Ticket", Moderator: i.Member.User, Detail: fmt.Sprintf("Closed #%d (opened by <@%s>)", t.ID, t.UserID)})
	respondSuccess(s, i, fmt.Sprintf("🔒 Ticket #%d closed. This channel will be deleted.", t.ID))

	// Give the member a moment to see the reply before the channel goes.
	time.AfterFunc(5*time.Second, func() {
		if _, err := s.ChannelDelete(t.ChannelID); err != nil {
			log.Printf("[TICKET ERROR] Guild %s | delete channel %s: %v", i.GuildID, t.ChannelID, err)
		}
	})
}
