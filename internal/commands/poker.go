package commands

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"guildbot/internal/casino"
	"guildbot/internal/games"

	"github.com/bwmarrin/discordgo"
)

var PokerCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "poker",
		Description: "Play 5-card draw against the pay table",
		Options:     []*discordgo.ApplicationCommandOption{betOption()},
	},
}

// Cards picked in the select menu, waiting for the Draw button, by round ID.
var (
	pendingDiscards   = make(map[string][]int)
	pendingDiscardsMu sync.Mutex
)

func HandlePokerCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	bet := int(data.Options[0].IntValue())
	key := gameKey(i)

	res, err := Casino.StartPoker(key, bet)
	if err != nil {
		log.Printf("[POKER ERROR] User %s: %v", key.UserID, err)
		respondGameError(s, i, casino.GamePoker, err)
		return
	}
	log.Printf("[POKER START] %s | Bet: %d | Hand: %s", i.Member.User.Username, bet, res.Player)

	respondGame(s, i, res, pokerEmbed(res), pokerComponents(res, nil))
}

// HandlePokerComponent handles the discard menu and the Draw button.
func HandlePokerComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	action, owner := splitOwnedID(data.CustomID)
	if !checkOwner(s, i, owner) {
		return
	}
	key := gameKey(i)

	switch action {
	case "game_poker_discard":
		handlePokerDiscard(s, i, key, data.Values)
	case "game_poker_draw":
		handlePokerDraw(s, i, key)
	}
}

func handlePokerDiscard(s *discordgo.Session, i *discordgo.InteractionCreate, key casino.Key, values []string) {
	res, err := Casino.Peek(key)
	if err == nil && res.Game != casino.GamePoker {
		err = casino.ErrNoSession
	}
	if err != nil {
		respondGameError(s, i, casino.GamePoker, err)
		return
	}

	positions := make([]int, 0, len(values))
	for _, v := range values {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p >= len(res.Player) {
			continue
		}
		positions = append(positions, p)
	}
	sort.Ints(positions)
	setDiscards(res.RoundID, positions)

	updateGame(s, i, pokerEmbed(res), pokerComponents(res, positions))
}

func handlePokerDraw(s *discordgo.Session, i *discordgo.InteractionCreate, key casino.Key) {
	var positions []int
	if cur, err := Casino.Peek(key); err == nil {
		positions = takeDiscards(cur.RoundID)
	}
	res, err := Casino.DrawPoker(key, positions)
	if err != nil {
		respondGameError(s, i, casino.GamePoker, err)
		return
	}
	log.Printf("[POKER FINISH] %s | Discarded: %v | %s | Delta: %d", i.Member.User.Username, positions, res.Rank, res.Settlement.Delta)
	updateGame(s, i, pokerEmbed(res), nil)
}

func setDiscards(roundID string, positions []int) {
	pendingDiscardsMu.Lock()
	pendingDiscards[roundID] = positions
	pendingDiscardsMu.Unlock()
}

func takeDiscards(roundID string) []int {
	pendingDiscardsMu.Lock()
	defer pendingDiscardsMu.Unlock()
	positions := pendingDiscards[roundID]
	delete(pendingDiscards, roundID)
	return positions
}

func pokerEmbed(res casino.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "5-Card Draw",
		Color: settlementColor(res),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet", Value: fmt.Sprintf("$%d", res.Bet), Inline: true},
			{Name: "Your Hand", Value: res.Player.String()},
		},
	}

	if !res.Finished() {
		embed.Description = "Pick the cards to throw away, then press **Draw**."
		return embed
	}

	embed.Description = settlementLine(res)
	if desc, err := games.DescribeHand(res.Player); err == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Result", Value: desc})
	}
	embed.Footer = balanceFooter(res.Key)
	return embed
}

func pokerComponents(res casino.Result, discards []int) []discordgo.MessageComponent {
	if res.Finished() {
		return nil
	}

	picked := make(map[int]bool, len(discards))
	for _, p := range discards {
		picked[p] = true
	}
	options := make([]discordgo.SelectMenuOption, 0, len(res.Player))
	for idx, c := range res.Player {
		options = append(options, discordgo.SelectMenuOption{
			Label:   fmt.Sprintf("%d: %s", idx+1, c),
			Value:   strconv.Itoa(idx),
			Default: picked[idx],
		})
	}

	drawLabel := "Stand Pat"
	if len(discards) > 0 {
		var names []string
		for _, p := range discards {
			names = append(names, res.Player[p].String())
		}
		drawLabel = "Draw (replace " + strings.Join(names, " ") + ")"
	}

	minValues := 0
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    ownedID("game_poker_discard", res.Key.UserID),
					Placeholder: "Cards to discard",
					MinValues:   &minValues,
					MaxValues:   len(options),
					Options:     options,
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: drawLabel, Style: discordgo.SuccessButton, CustomID: ownedID("game_poker_draw", res.Key.UserID)},
			},
		},
	}
}
