package commands

import (
	"fmt"

	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

// funRand drives the novelty commands. Nothing rides on them.
var funRand games.Rand = games.DefaultRand

var FunCommands = []*discordgo.ApplicationCommand{
	{Name: "coinflip", Description: "Flip a coin"},
	{
		Name:        "8ball",
		Description: "Ask the magic 8-ball a question",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Your yes-or-no question", Required: true, MaxLength: 200},
		},
	},
}

var eightBallAnswers = []string{
	"It is certain.", "Without a doubt.", "You may rely on it.", "Yes, definitely.",
	"Most likely.", "Outlook good.", "Signs point to yes.",
	"Reply hazy, try again.", "Ask again later.", "Cannot predict now.",
	"Don't count on it.", "My sources say no.", "Outlook not so good.", "Very doubtful.",
}

func coinFace(r games.Rand) string {
	if r.IntN(2) == 0 {
		return "Heads"
	}
	return "Tails"
}

func eightBall(r games.Rand) string {
	return eightBallAnswers[r.IntN(len(eightBallAnswers))]
}

func HandleFunCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	switch data.Name {
	case "coinflip":
		respondSuccess(s, i, fmt.Sprintf("🪙 **%s**!", coinFace(funRand)))
	case "8ball":
		question := optionMap(data.Options)["question"].StringValue()
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "🎱 " + question,
			Description: eightBall(funRand),
			Color:       0x2c2f33,
		})
	}
}
