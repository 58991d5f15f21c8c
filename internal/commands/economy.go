package commands

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"guildbot/internal/casino"
	"guildbot/internal/database"
	"guildbot/internal/events"
	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

// reward is a periodic payout. Work pays a random amount in [Amount, Amount+Spread].
type reward struct {
	Amount   int
	Spread   int
	Cooldown time.Duration
	Message  string
}

var rewards = map[string]reward{
	"daily":   {Amount: 500, Cooldown: 24 * time.Hour, Message: "💰 Daily reward claimed!"},
	"weekly":  {Amount: 2500, Cooldown: 7 * 24 * time.Hour, Message: "💰 Weekly reward claimed!"},
	"monthly": {Amount: 10000, Cooldown: 30 * 24 * time.Hour, Message: "💰 Monthly reward claimed!"},
	"work":    {Amount: 50, Spread: 100, Cooldown: time.Hour, Message: "🛠️ You worked a shift."},
}

func amountOption(description string, floor *float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: description, Required: true, MinValue: floor}
}

var EconomyCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "money",
		Description: "Economy commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "balance",
				Description: "Check balance",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to check balance of"},
				},
			},
			{
				Name:        "send",
				Description: "Send money to another user",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options:     []*discordgo.ApplicationCommandOption{userOption("User to send money to"), amountOption("Amount to send", &minBet)},
			},
			{
				Name:        "add",
				Description: "Add money to a user (Admin only)",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options:     []*discordgo.ApplicationCommandOption{userOption("User to add money to"), amountOption("Amount to add (negative to remove)", nil)},
			},
			{Name: "daily", Description: "Claim your daily reward", Type: discordgo.ApplicationCommandOptionSubCommand},
			{Name: "weekly", Description: "Claim your weekly reward", Type: discordgo.ApplicationCommandOptionSubCommand},
			{Name: "monthly", Description: "Claim your monthly reward", Type: discordgo.ApplicationCommandOptionSubCommand},
			{Name: "work", Description: "Work for some cash every hour", Type: discordgo.ApplicationCommandOptionSubCommand},
			{Name: "top", Description: "Show the richest members", Type: discordgo.ApplicationCommandOptionSubCommand},
		},
	},
}

func HandleEconomyCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 {
		handleBalance(s, i, i.Member.User)
		return
	}

	subcmd := data.Options[0]
	opts := optionMap(subcmd.Options)
	switch subcmd.Name {
	case "balance":
		user := i.Member.User
		if o, ok := opts["user"]; ok {
			user = o.UserValue(s)
		}
		handleBalance(s, i, user)
	case "send":
		handleSend(s, i, opts["user"].UserValue(s), int(opts["amount"].IntValue()))
	case "add":
		handleAddMoney(s, i, opts["user"].UserValue(s), int(opts["amount"].IntValue()))
	case "daily", "weekly", "monthly", "work":
		handleReward(s, i, subcmd.Name)
	case "top":
		handleTop(s, i)
	}
}

// riding returns the bet the user has on an unfinished game in this guild.
func riding(userID, guildID string) int {
	if Casino == nil {
		return 0
	}
	if t, ok := Casino.Active(casino.Key{UserID: userID, GuildID: guildID}); ok {
		return t.Bet
	}
	return 0
}

func handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User) {
	bal, err := DB.GetBalance(user.ID, i.GuildID)
	if err != nil {
		log.Printf("[ECONOMY ERROR] balance %s: %v", user.ID, err)
		respondError(s, i, "Failed to fetch balance.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "💰 " + user.Username,
		Color: 0xFFD700,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Balance", Value: fmt.Sprintf("$%d", bal), Inline: true},
		},
	}
	if bet := riding(user.ID, i.GuildID); bet > 0 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "In Play", Value: fmt.Sprintf("$%d", bet), Inline: true},
			&discordgo.MessageEmbedField{Name: "Available", Value: fmt.Sprintf("$%d", bal-bet), Inline: true},
		)
	}
	rounds, err := DB.RecentRounds(user.ID, i.GuildID, recentGames)
	if err != nil {
		log.Printf("[ECONOMY ERROR] recent rounds %s: %v", user.ID, err)
	} else if f := recentGamesField(rounds); f != nil {
		embed.Fields = append(embed.Fields, f)
	}
	respondEmbed(s, i, embed)
}

const recentGames = 5

// recentGamesField lists settled rounds, newest first. Nil when there are none.
func recentGamesField(rounds []database.Round) *discordgo.MessageEmbedField {
	if len(rounds) == 0 {
		return nil
	}
	var b strings.Builder
	for _, r := range rounds {
		sign := "+"
		if r.Delta < 0 {
			sign = "-"
		}
		fmt.Fprintf(&b, "%s $%d · %s (%s) <t:%d:R>\n", sign, abs(r.Delta), r.Game, r.Outcome, r.SettledAt.Unix())
	}
	return &discordgo.MessageEmbedField{Name: "Recent Games", Value: b.String()}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func handleSend(s *discordgo.Session, i *discordgo.InteractionCreate, to *discordgo.User, amount int) {
	switch {
	case amount <= 0:
		respondError(s, i, "Amount must be positive.")
		return
	case to.ID == i.Member.User.ID:
		respondError(s, i, "You cannot send money to yourself.")
		return
	case to.Bot:
		respondError(s, i, "You cannot send money to bots.")
		return
	}

	// Money riding on an unfinished game cannot be sent away.
	if bet := riding(i.Member.User.ID, i.GuildID); bet > 0 {
		bal, err := DB.GetBalance(i.Member.User.ID, i.GuildID)
		if err == nil && bal-bet < amount {
			respondError(s, i, fmt.Sprintf("You have $%d riding on a game in progress.", bet))
			return
		}
	}

	err := DB.Transfer(i.GuildID, i.Member.User.ID, to.ID, amount)
	switch {
	case errors.Is(err, database.ErrInsufficientFunds):
		respondError(s, i, "Insufficient funds.")
		return
	case err != nil:
		log.Printf("[ECONOMY ERROR] transfer %s -> %s: %v", i.Member.User.ID, to.ID, err)
		respondError(s, i, "Transaction failed.")
		return
	}

	log.Printf("[ECONOMY SEND] Guild: %s | %s -> %s | $%d", i.GuildID, i.Member.User.Username, to.Username, amount)
	respondSuccess(s, i, fmt.Sprintf("💸 Sent **$%d** to **%s**.", amount, to.Username))
}

func handleAddMoney(s *discordgo.Session, i *discordgo.InteractionCreate, target *discordgo.User, amount int) {
	// The "money" node opens /money; adding needs its own node.
	if !hasPermission(i, "admin.money") {
		respondError(s, i, "You do not have permission to use this command.")
		return
	}

	if err := DB.AdjustBalance(target.ID, i.GuildID, amount); err != nil {
		log.Printf("[ECONOMY ERROR] adjust %s by %d: %v", target.ID, amount, err)
		respondError(s, i, "Failed to add money.")
		return
	}

	log.Printf("[ECONOMY ADD] Guild: %s | %s gave %s $%d", i.GuildID, i.Member.User.Username, target.Username, amount)
	AuditLog.ModerationAction(events.Action{Kind: "Money", Moderator: i.Member.User, Target: target, Detail: fmt.Sprintf("%+d", amount)})
	respondSuccess(s, i, fmt.Sprintf("✅ Adjusted **%s** by **$%+d**.", target.Username, amount))
}

func handleReward(s *discordgo.Session, i *discordgo.InteractionCreate, kind string) {
	r := rewards[kind]
	amount := r.Amount
	if r.Spread > 0 {
		amount += games.DefaultRand.IntN(r.Spread + 1)
	}

	next, ok, err := DB.ClaimReward(i.Member.User.ID, i.GuildID, kind, amount, r.Cooldown, time.Now())
	if err != nil {
		log.Printf("[ECONOMY ERROR] %s claim for %s: %v", kind, i.Member.User.ID, err)
		respondError(s, i, "Database error.")
		return
	}
	if !ok {
		respondError(s, i, fmt.Sprintf("You already claimed this. Come back <t:%d:R>.", next.Unix()))
		return
	}

	log.Printf("[ECONOMY %s] %s earned $%d", strings.ToUpper(kind), i.Member.User.Username, amount)
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       r.Message,
		Description: fmt.Sprintf("You received **$%d**.", amount),
		Color:       0x00FF00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Next Claim", Value: fmt.Sprintf("<t:%d:R>", next.Unix()), Inline: true},
		},
		Footer: balanceFooter(gameKey(i)),
	})
}

func handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	top, err := DB.TopBalances(i.GuildID, 10)
	if err != nil {
		log.Printf("[ECONOMY ERROR] leaderboard for %s: %v", i.GuildID, err)
		respondError(s, i, "Failed to load the leaderboard.")
		return
	}
	if len(top) == 0 {
		respondSuccess(s, i, "Nobody has any money yet.")
		return
	}

	var b strings.Builder
	for n, e := range top {
		fmt.Fprintf(&b, "**%d.** <@%s> $%d\n", n+1, e.UserID, e.Balance)
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🏆 Richest Members",
		Description: b.String(),
		Color:       0xFFD700,
	})
}
