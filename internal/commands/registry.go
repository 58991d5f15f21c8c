package commands

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"guildbot/internal/casino"
	"guildbot/internal/database"
	"guildbot/internal/events"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// CommandPermissionMap maps command names to their required permission node.
var CommandPermissionMap = map[string]string{
	// Moderation
	"kick":     "admin.kick",
	"ban":      "admin.ban",
	"timeout":  "admin.timeout",
	"purge":    "admin.purge",
	"warn":     "admin.warn",
	"warnings": "admin.warn",

	// Economy
	"money":       "economy.money",
	"admin.money": "admin.money",

	// Games
	"bj":         "games.bj",
	"poker":      "games.poker",
	"slots":      "games.slots",
	"roulette":   "games.roulette",
	"gameconfig": "admin.gameconfig",

	// Leveling
	"rank": "leveling.rank",

	// Permissions
	"perm": "admin.perm",
}

// PublicCommands need no node. Closing a ticket is checked by the handler.
var PublicCommands = map[string]bool{
	"ticket":   true,
	"coinflip": true,
	"8ball":    true,
}

var (
	DB       *database.DB
	Casino   *casino.Service
	AuditLog *events.Logger
	OwnerID  string
)

func AllCommands() []*discordgo.ApplicationCommand {
	all := make([]*discordgo.ApplicationCommand, 0, 20)
	all = append(all, ModerationCommands...)
	all = append(all, EconomyCommands...)
	all = append(all, BlackjackCommands...)
	all = append(all, PokerCommands...)
	all = append(all, SlotsCommands...)
	all = append(all, RouletteCommands...)
	all = append(all, GameConfigCommands...)
	all = append(all, LevelingCommands...)
	all = append(all, PermissionCommands...)
	all = append(all, TicketCommands...)
	all = append(all, FunCommands...)
	return all
}

// RegisterCommands replaces the application's slash commands with
// AllCommands, so commands dropped from the bot disappear from Discord too.
func RegisterCommands(s *discordgo.Session, guildID string) error {
	cmds := AllCommands()
	created, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("register %d commands: %w", len(cmds), err)
	}
	scope := "globally"
	if guildID != "" {
		scope = "in guild " + guildID
	}
	log.Printf("Registered %d commands %s.", len(created), scope)
	return nil
}

// Button spam protection: two clicks per second with a small burst, per user.
var clickLimiters = struct {
	sync.Mutex
	m map[string]*rate.Limiter
}{m: make(map[string]*rate.Limiter)}

func allowClick(userID string) bool {
	clickLimiters.Lock()
	l, ok := clickLimiters.m[userID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 4)
		clickLimiters.m[userID] = l
	}
	clickLimiters.Unlock()
	return l.Allow()
}

// HandleInteraction is the central dispatcher for all slash commands.
func HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		// Direct messages are not supported.
		return
	}

	if i.Type == discordgo.InteractionMessageComponent {
		if !allowClick(i.Member.User.ID) {
			respondError(s, i, "Slow down!")
			return
		}
		id := i.MessageComponentData().CustomID
		if strings.HasPrefix(id, "game_bj_") {
			HandleGameComponent(s, i)
		} else if strings.HasPrefix(id, "game_poker_") {
			HandlePokerComponent(s, i)
		}
		return
	}

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()

	// Permission Check
	if !hasPermission(i, data.Name) {
		log.Printf("[COMMAND DENIED] User: %s (%s) | Command: %s | Reason: Low Permissions", i.Member.User.Username, i.Member.User.ID, data.Name)
		respondError(s, i, "You do not have permission to use this command.")
		return
	}

	log.Printf("[COMMAND EXEC] User: %s (%s) | Guild: %s | Command: %s", i.Member.User.Username, i.Member.User.ID, i.GuildID, data.Name)

	switch data.Name {
	// Moderation
	case "kick", "ban", "timeout", "purge", "warn", "warnings":
		HandleModerationCommand(s, i, data)
	// Economy
	case "money":
		HandleEconomyCommand(s, i, data)
	// Games
	case "bj":
		HandleBlackjackCommand(s, i, data)
	case "poker":
		HandlePokerCommand(s, i, data)
	case "slots":
		HandleSlotsCommand(s, i, data)
	case "roulette":
		HandleRouletteCommand(s, i, data)
	case "gameconfig":
		HandleGameConfigCommand(s, i, data)
	// Leveling
	case "rank":
		HandleRankCommand(s, i, data)
	// Permissions
	case "perm":
		HandlePermissionCommand(s, i, data)
	// Support
	case "ticket":
		HandleTicketCommand(s, i, data)
	// Fun
	case "coinflip", "8ball":
		HandleFunCommand(s, i, data)
	}
}

// hasPermission allows the bot owner and server administrators everything;
// everyone else needs the command's node granted in this guild.
func hasPermission(i *discordgo.InteractionCreate, commandName string) bool {
	userID := i.Member.User.ID
	if userID == OwnerID {
		return true
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if PublicCommands[commandName] {
		return true
	}

	node, exists := CommandPermissionMap[commandName]
	if !exists {
		return false
	}
	if DB == nil {
		return false
	}

	has, err := DB.HasPermission(i.GuildID, userID, node)
	if err != nil {
		log.Printf("Error checking permission for user %s node %s: %v", userID, node, err)
		return false
	}
	return has
}

// IsValidPermissionNode checks if a permission node exists in the map.
func IsValidPermissionNode(node string) bool {
	for _, n := range CommandPermissionMap {
		if n == node {
			return true
		}
	}
	return false
}

// GetPermissionsByCategory returns all permission nodes under a category,
// e.g. "games" -> "games.bj", "games.poker".
func GetPermissionsByCategory(category string) []string {
	var nodes []string
	prefix := category + "."
	for _, node := range CommandPermissionMap {
		if strings.HasPrefix(node, prefix) {
			nodes = append(nodes, node)
		}
	}
	return uniqueStrings(nodes)
}

func uniqueStrings(input []string) []string {
	u := make([]string, 0, len(input))
	m := make(map[string]bool)
	for _, val := range input {
		if !m[val] {
			m[val] = true
			u = append(u, val)
		}
	}
	return u
}
