package commands

import (
	"fmt"
	"log"

	"guildbot/internal/casino"

	"github.com/bwmarrin/discordgo"
)

var SlotsCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "slots",
		Description: "Spin the slot machine",
		Options:     []*discordgo.ApplicationCommandOption{betOption()},
	},
}

func HandleSlotsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	bet := int(data.Options[0].IntValue())
	key := gameKey(i)

	res, err := Casino.SpinSlots(key, bet)
	if err != nil {
		respondGameError(s, i, casino.GameSlots, err)
		return
	}
	log.Printf("[SLOTS] %s | Bet: %d | %s %s %s | Delta: %d", i.Member.User.Username, bet, res.Reels[0].Face, res.Reels[1].Face, res.Reels[2].Face, res.Settlement.Delta)

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Slots",
		Description: fmt.Sprintf("## %s | %s | %s\n%s", res.Reels[0].Face, res.Reels[1].Face, res.Reels[2].Face, settlementLine(res)),
		Color:       settlementColor(res),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet", Value: fmt.Sprintf("$%d", bet), Inline: true},
		},
		Footer: balanceFooter(key),
	})
}
