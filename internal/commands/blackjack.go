package commands

import (
	"fmt"
	"log"

	"guildbot/internal/casino"
	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

var BlackjackCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "bj",
		Description: "Play Blackjack against the dealer",
		Options:     []*discordgo.ApplicationCommandOption{betOption()},
	},
}

func HandleBlackjackCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	bet := int(data.Options[0].IntValue())
	key := gameKey(i)

	res, err := Casino.StartBlackjack(key, bet)
	if err != nil {
		log.Printf("[BLACKJACK ERROR] User %s: %v", key.UserID, err)
		respondGameError(s, i, casino.GameBlackjack, err)
		return
	}
	log.Printf("[BLACKJACK START] %s | Bet: %d | Hand: %d", i.Member.User.Username, bet, games.HandValue(res.Player))

	respondGame(s, i, res, blackjackEmbed(res), blackjackButtons(res))
}

// HandleGameComponent routes the Hit and Stand buttons.
func HandleGameComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, owner := splitOwnedID(i.MessageComponentData().CustomID)
	if !checkOwner(s, i, owner) {
		return
	}
	key := gameKey(i)

	var (
		res casino.Result
		err error
	)
	switch action {
	case "game_bj_hit":
		res, err = Casino.Hit(key)
	case "game_bj_stand":
		res, err = Casino.Stand(key)
	default:
		return
	}
	if err != nil {
		respondGameError(s, i, casino.GameBlackjack, err)
		return
	}

	log.Printf("[BLACKJACK ACTION] %s %s | Hand Value: %d", i.Member.User.Username, action, games.HandValue(res.Player))
	if res.Finished() {
		log.Printf("[BLACKJACK FINISH] %s | Dealer: %d | %s | Delta: %d", i.Member.User.Username, games.HandValue(res.Dealer), res.Status, res.Settlement.Delta)
	}
	updateGame(s, i, blackjackEmbed(res), blackjackButtons(res))
}

func blackjackEmbed(res casino.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Blackjack",
		Color: settlementColor(res),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet", Value: fmt.Sprintf("$%d", res.Bet), Inline: true},
		},
	}

	dealerHandStr := "None"
	if len(res.Dealer) > 0 {
		dealerHandStr = fmt.Sprintf("`%s` `??`", res.Dealer[0])
	}
	if res.Finished() {
		dealerHandStr = fmt.Sprintf("(%d) %s", games.HandValue(res.Dealer), res.Dealer)
		embed.Description = settlementLine(res)
		embed.Footer = balanceFooter(res.Key)
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Dealer's Hand", Value: dealerHandStr},
		&discordgo.MessageEmbedField{Name: fmt.Sprintf("Your Hand (%d)", games.HandValue(res.Player)), Value: res.Player.String()},
	)
	return embed
}

func blackjackButtons(res casino.Result) []discordgo.MessageComponent {
	if res.Finished() {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: ownedID("game_bj_hit", res.Key.UserID)},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: ownedID("game_bj_stand", res.Key.UserID)},
			},
		},
	}
}
