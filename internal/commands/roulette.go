package commands

import (
	"fmt"
	"log"

	"guildbot/internal/casino"
	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

var RouletteCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "roulette",
		Description: "Bet on a roulette color",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "color",
				Description: "Red and black pay 2x, green pays 15x",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Red", Value: string(games.Red)},
					{Name: "Black", Value: string(games.Black)},
					{Name: "Green", Value: string(games.Green)},
				},
			},
			betOption(),
		},
	},
}

func HandleRouletteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	pick := games.Color(opts["color"].StringValue())
	bet := int(opts["bet"].IntValue())
	key := gameKey(i)

	res, err := Casino.SpinRoulette(key, bet, pick)
	if err != nil {
		respondGameError(s, i, casino.GameRoulette, err)
		return
	}
	log.Printf("[ROULETTE] %s | Bet: %d on %s | Landed: %d %s | Delta: %d", i.Member.User.Username, bet, pick, res.Pocket.Number, res.Pocket.Color, res.Settlement.Delta)

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Roulette",
		Description: fmt.Sprintf("The ball landed on %s **%d**\n%s", res.Pocket.Color.Emoji(), res.Pocket.Number, settlementLine(res)),
		Color:       settlementColor(res),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your Pick", Value: fmt.Sprintf("%s %s", pick.Emoji(), pick), Inline: true},
			{Name: "Bet", Value: fmt.Sprintf("$%d", bet), Inline: true},
		},
		Footer: balanceFooter(key),
	})
}
