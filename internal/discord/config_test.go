package discord

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GAME_TIMEOUT", "")
	t.Setenv("DEFAULT_MIN_BET", "")
	t.Setenv("DEFAULT_MAX_BET", "")
	t.Setenv("DEFAULT_HOUSE_EDGE", "")
	t.Setenv("DEFAULT_COOLDOWN", "")
	t.Setenv("LEDGER_RETENTION_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GameTimeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %s", cfg.GameTimeout)
	}
	if cfg.DefaultMinBet != 10 || cfg.DefaultMaxBet != 10000 {
		t.Errorf("unexpected bet limits %d-%d", cfg.DefaultMinBet, cfg.DefaultMaxBet)
	}
	if cfg.LedgerRetention != 90*24*time.Hour {
		t.Errorf("unexpected retention %s", cfg.LedgerRetention)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GAME_TIMEOUT", "2m")
	t.Setenv("DEFAULT_MIN_BET", "5")
	t.Setenv("DEFAULT_MAX_BET", "500")
	t.Setenv("DEFAULT_HOUSE_EDGE", "0.02")
	t.Setenv("DEFAULT_COOLDOWN", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GameTimeout != 2*time.Minute || cfg.DefaultHouseEdge != 0.02 || cfg.DefaultCooldown != 30*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"missing token", "DISCORD_TOKEN", ""},
		{"bad timeout", "GAME_TIMEOUT", "soon"},
		{"negative timeout", "GAME_TIMEOUT", "-5s"},
		{"edge too high", "DEFAULT_HOUSE_EDGE", "1.5"},
		{"min above max", "DEFAULT_MIN_BET", "20000"},
		{"cooldown over a day", "DEFAULT_COOLDOWN", "86401"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "token")
			t.Setenv("GAME_TIMEOUT", "")
			t.Setenv("DEFAULT_HOUSE_EDGE", "")
			t.Setenv("DEFAULT_MIN_BET", "")
			t.Setenv("DEFAULT_MAX_BET", "")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
