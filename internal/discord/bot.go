package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Presence shown under the bot's name once connected.
const presence = "/bj · /poker · /slots · /roulette"

type Bot struct {
	Session *discordgo.Session
	Config  *Config
}

func New(cfg *Config) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	// Guild messages feed leveling; members feed the join/leave log.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	b := &Bot{Session: session, Config: cfg}
	session.AddHandler(b.onReady)
	return b, nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as %s in %d guild(s)", r.User.Username, len(r.Guilds))
	if err := s.UpdateGameStatus(0, presence); err != nil {
		log.Printf("Failed to set presence: %v", err)
	}
}

// Start opens the gateway connection. Handlers must be added before.
func (b *Bot) Start() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.Session.Close()
}
