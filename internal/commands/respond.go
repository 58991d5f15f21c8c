package commands

import "github.com/bwmarrin/discordgo"

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	respondEphemeral(s, i, "❌ "+msg)
}

func respondSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	respondData(s, i, &discordgo.InteractionResponseData{Content: msg})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	respondData(s, i, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	respondData(s, i, &discordgo.InteractionResponseData{Content: msg, Flags: discordgo.MessageFlagsEphemeral})
}

func respondData(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}
