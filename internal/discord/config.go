package discord

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"guildbot/internal/database"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken     string
	GuildID          string
	LogChannelID     string
	TicketCategoryID string
	Database         string
	StatusAddr       string

	GameTimeout      time.Duration
	DefaultMinBet    int
	DefaultMaxBet    int
	DefaultCooldown  time.Duration
	DefaultHouseEdge float64
	LedgerRetention  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	timeout := 60 * time.Second
	if v := os.Getenv("GAME_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid GAME_TIMEOUT %q (e.g. 60s, 2m)", v)
		}
		timeout = d
	}

	minBet := getEnvInt("DEFAULT_MIN_BET", 10)
	maxBet := getEnvInt("DEFAULT_MAX_BET", 10000)
	if minBet < 1 || maxBet < minBet {
		return nil, fmt.Errorf("invalid bet limits: DEFAULT_MIN_BET=%d DEFAULT_MAX_BET=%d", minBet, maxBet)
	}

	edge := 0.0
	if v := os.Getenv("DEFAULT_HOUSE_EDGE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 1 {
			return nil, fmt.Errorf("invalid DEFAULT_HOUSE_EDGE %q (must be in [0, 1))", v)
		}
		edge = f
	}

	cooldown := getEnvInt("DEFAULT_COOLDOWN", 0) // seconds
	if cooldown < 0 {
		cooldown = 0
	}
	if time.Duration(cooldown)*time.Second > database.MaxCooldown {
		return nil, fmt.Errorf("invalid DEFAULT_COOLDOWN %d (at most %s)", cooldown, database.MaxCooldown)
	}

	retention := getEnvInt("LEDGER_RETENTION_DAYS", 90)
	if retention < 1 {
		retention = 1
	}

	return &Config{
		DiscordToken:     token,
		GuildID:          os.Getenv("GUILD_ID"),
		LogChannelID:     os.Getenv("LOG_CHANNEL_ID"),
		TicketCategoryID: os.Getenv("TICKET_CATEGORY_ID"),
		Database:         getEnv("DATABASE", "guildbot.db"),
		StatusAddr:       os.Getenv("STATUS_ADDR"),
		GameTimeout:      timeout,
		DefaultMinBet:    minBet,
		DefaultMaxBet:    maxBet,
		DefaultCooldown:  time.Duration(cooldown) * time.Second,
		DefaultHouseEdge: edge,
		LedgerRetention:  time.Duration(retention) * 24 * time.Hour,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
