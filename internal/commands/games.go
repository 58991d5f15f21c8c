package commands

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"guildbot/internal/casino"

	"github.com/bwmarrin/discordgo"
)

var minBet = 1.0

func betOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "bet",
		Description: "Amount to bet",
		Required:    true,
		MinValue:    &minBet,
	}
}

func gameKey(i *discordgo.InteractionCreate) casino.Key {
	return casino.Key{UserID: i.Member.User.ID, GuildID: i.GuildID}
}

// ownedID builds a component ID bound to the player who owns the game.
func ownedID(action, userID string) string {
	return action + ":" + userID
}

// splitOwnedID returns the action and owner of a component ID.
func splitOwnedID(customID string) (action, owner string) {
	action, owner, _ = strings.Cut(customID, ":")
	return action, owner
}

func respondGameError(s *discordgo.Session, i *discordgo.InteractionCreate, game casino.Game, err error) {
	var verr *casino.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(s, i, verr.Reason)
	case errors.Is(err, casino.ErrNoSession):
		respondError(s, i, "This game has already finished or expired.")
	case errors.Is(err, casino.ErrAborted):
		respondError(s, i, "The deck ran out. The round was cancelled and no money changed hands.")
	default:
		log.Printf("[%s ERROR] User %s: %v", strings.ToUpper(string(game)), i.Member.User.ID, err)
		respondError(s, i, "Database error.")
	}
}

func settlementColor(res casino.Result) int {
	switch {
	case !res.Finished():
		return 0x5865F2
	case res.Settlement.Delta > 0:
		return 0x00FF00
	case res.Settlement.Delta < 0:
		return 0xFF0000
	default:
		return 0xFFFF00
	}
}

func settlementLine(res casino.Result) string {
	st := res.Settlement
	switch {
	case st.Delta > 0:
		return fmt.Sprintf("**%s** 🎉 You won **$%d**!", st.Label, st.Delta)
	case st.Delta < 0:
		return fmt.Sprintf("**%s** ❌ You lost **$%d**.", st.Label, -st.Delta)
	default:
		return fmt.Sprintf("**%s** 🤝 Your bet is returned.", st.Label)
	}
}

func balanceFooter(key casino.Key) *discordgo.MessageEmbedFooter {
	bal, err := DB.GetBalance(key.UserID, key.GuildID)
	if err != nil {
		return nil
	}
	return &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Balance: $%d", bal)}
}

// respondGame sends a game's first message and remembers where it lives so
// the expiry handler can update it later.
func respondGame(s *discordgo.Session, i *discordgo.InteractionCreate, res casino.Result, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil || res.Finished() {
		return
	}
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		return
	}
	Casino.AttachMessage(res.Key, msg.ChannelID, msg.ID)
}

func updateGame(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// checkOwner rejects clicks on somebody else's game.
func checkOwner(s *discordgo.Session, i *discordgo.InteractionCreate, owner string) bool {
	if owner != "" && owner != i.Member.User.ID {
		respondError(s, i, "This isn't your game!")
		return false
	}
	return true
}

// GameExpiredHandler edits an abandoned game's message once its bet is forfeited.
func GameExpiredHandler(s *discordgo.Session) func(casino.Result) {
	return func(res casino.Result) {
		log.Printf("[%s EXPIRED] User %s forfeited $%d", strings.ToUpper(string(res.Game)), res.Key.UserID, res.Bet)
		if res.Game == casino.GamePoker {
			takeDiscards(res.RoundID)
		}
		if res.MessageID == "" {
			return
		}

		var embed *discordgo.MessageEmbed
		switch res.Game {
		case casino.GameBlackjack:
			embed = blackjackEmbed(res)
		case casino.GamePoker:
			embed = pokerEmbed(res)
		default:
			return
		}
		embed.Description = "⏰ Timed out. " + settlementLine(res)

		embeds := []*discordgo.MessageEmbed{embed}
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         res.MessageID,
			Channel:    res.ChannelID,
			Embeds:     &embeds,
			Components: &[]discordgo.MessageComponent{},
		})
		if err != nil {
			log.Printf("Failed to update expired game message %s: %v", res.MessageID, err)
		}
	}
}
