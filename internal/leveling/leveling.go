package leveling

import (
	"fmt"
	"log"
	"time"

	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

const (
	MinMessageXP = 15
	MaxMessageXP = 25
	Cooldown     = 60 * time.Second
)

// XPForLevel is the total XP needed to reach level.
func XPForLevel(level int) int {
	return 100 * level * level
}

// LevelForXP returns the highest level whose threshold xp has reached.
func LevelForXP(xp int) int {
	level := 0
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// Progress returns the level plus how far xp is into it and how much XP the
// whole level spans.
func Progress(xp int) (level, into, span int) {
	level = LevelForXP(xp)
	base := XPForLevel(level)
	return level, xp - base, XPForLevel(level+1) - base
}

type Store interface {
	AddXP(userID, guildID string, xp int, cooldown time.Duration, now time.Time) (int, bool, error)
}

// Tracker awards XP for chat messages.
type Tracker struct {
	store Store
	rng   games.Rand
	now   func() time.Time
}

func NewTracker(store Store, rng games.Rand) *Tracker {
	if rng == nil {
		rng = games.DefaultRand
	}
	return &Tracker{store: store, rng: rng, now: time.Now}
}

// Award credits a random amount of XP unless the member is on cooldown. It
// reports the new level when the award crossed a level threshold.
func (t *Tracker) Award(userID, guildID string) (newLevel int, leveledUp bool, err error) {
	xp := MinMessageXP + t.rng.IntN(MaxMessageXP-MinMessageXP+1)
	total, credited, err := t.store.AddXP(userID, guildID, xp, Cooldown, t.now())
	if err != nil || !credited {
		return LevelForXP(total), false, err
	}
	before, after := LevelForXP(total-xp), LevelForXP(total)
	return after, after > before, nil
}

// OnMessageCreate is the discordgo handler that feeds Award.
func (t *Tracker) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	level, up, err := t.Award(m.Author.ID, m.GuildID)
	if err != nil {
		log.Printf("[LEVELING ERROR] %s: %v", m.Author.ID, err)
		return
	}
	if !up {
		return
	}

	log.Printf("[LEVEL UP] %s (%s) reached level %d in %s", m.Author.Username, m.Author.ID, level, m.GuildID)
	if _, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("🎉 %s reached **level %d**!", m.Author.Mention(), level)); err != nil {
		log.Printf("Failed to announce level up: %v", err)
	}
}
