package commands

import (
	"fmt"
	"log"
	"time"

	"guildbot/internal/casino"
	"guildbot/internal/database"

	"github.com/bwmarrin/discordgo"
)

var (
	minEdge = 0.0
	maxEdge = 0.5
	minZero = 0.0

	maxCooldown = database.MaxCooldown.Seconds()
)

func gameChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(casino.Games))
	for _, g := range casino.Games {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(g), Value: string(g)})
	}
	return choices
}

var GameConfigCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "gameconfig",
		Description: "Configure the casino games for this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "view",
				Description: "Show a game's settings",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "game", Description: "Game", Required: true, Choices: gameChoices()},
				},
			},
			{
				Name:        "set",
				Description: "Change a game's settings",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "game", Description: "Game", Required: true, Choices: gameChoices()},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "Whether the game can be played"},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "min_bet", Description: "Smallest accepted bet", MinValue: &minBet},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_bet", Description: "Largest accepted bet", MinValue: &minBet},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "cooldown", Description: "Seconds between plays (up to a day)", MinValue: &minZero, MaxValue: maxCooldown},
					{Type: discordgo.ApplicationCommandOptionNumber, Name: "house_edge", Description: "Fraction taken from blackjack winnings (0-0.5)", MinValue: &minEdge, MaxValue: maxEdge},
				},
			},
		},
	},
}

func HandleGameConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		return
	}
	subcmd := data.Options[0]

	opts := optionMap(subcmd.Options)
	game, ok := casino.ParseGame(opts["game"].StringValue())
	if !ok {
		respondError(s, i, "Unknown game.")
		return
	}

	cfg, err := DB.GameConfig(i.GuildID, string(game))
	if err != nil {
		log.Printf("[GAMECONFIG ERROR] Guild %s: %v", i.GuildID, err)
		respondError(s, i, "Database error.")
		return
	}

	if subcmd.Name == "set" {
		if o, ok := opts["enabled"]; ok {
			cfg.Enabled = o.BoolValue()
		}
		if o, ok := opts["min_bet"]; ok {
			cfg.MinBet = int(o.IntValue())
		}
		if o, ok := opts["max_bet"]; ok {
			cfg.MaxBet = int(o.IntValue())
		}
		if o, ok := opts["cooldown"]; ok {
			cfg.Cooldown = time.Duration(min(max(o.IntValue(), 0), int64(maxCooldown))) * time.Second
		}
		if o, ok := opts["house_edge"]; ok {
			cfg.HouseEdge = o.FloatValue()
		}
		if cfg.MinBet > cfg.MaxBet {
			respondError(s, i, fmt.Sprintf("Minimum bet ($%d) cannot exceed maximum bet ($%d).", cfg.MinBet, cfg.MaxBet))
			return
		}
		if err := DB.SetGameConfig(i.GuildID, string(game), cfg); err != nil {
			log.Printf("[GAMECONFIG ERROR] Guild %s: %v", i.GuildID, err)
			respondError(s, i, "Failed to save settings.")
			return
		}
		log.Printf("[GAMECONFIG] Guild %s | %s set %s to %+v", i.GuildID, i.Member.User.Username, game, cfg)
	}

	status := "✅ Enabled"
	if !cfg.Enabled {
		status = "⛔ Disabled"
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Settings: %s", game),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: status, Inline: true},
			{Name: "Bets", Value: fmt.Sprintf("$%d - $%d", cfg.MinBet, cfg.MaxBet), Inline: true},
			{Name: "Cooldown", Value: cfg.Cooldown.String(), Inline: true},
			{Name: "House Edge", Value: fmt.Sprintf("%.1f%%", cfg.HouseEdge*100), Inline: true},
		},
	})
}
