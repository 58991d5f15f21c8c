package commands

import (
	"fmt"
	"strings"

	"guildbot/internal/leveling"

	"github.com/bwmarrin/discordgo"
)

var LevelingCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "rank",
		Description: "Show your level and XP",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to look up",
				Required:    false,
			},
		},
	},
}

func HandleRankCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	user := i.Member.User
	if len(data.Options) > 0 {
		user = data.Options[0].UserValue(s)
	}

	xp, err := DB.XP(user.ID, i.GuildID)
	if err != nil {
		respondError(s, i, "Failed to fetch XP.")
		return
	}
	level, into, span := leveling.Progress(xp)

	const width = 10
	filled := into * width / span
	bar := strings.Repeat("🟩", filled) + strings.Repeat("⬛", width-filled)

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - Level %d", user.Username, level),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Progress", Value: fmt.Sprintf("%s\n%d / %d XP", bar, into, span)},
			{Name: "Total XP", Value: fmt.Sprintf("%d", xp), Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
	})
}
