package commands

import (
	"slices"
	"strings"
	"testing"
	"time"

	"guildbot/internal/casino"
	"guildbot/internal/database"

	"github.com/bwmarrin/discordgo"
)

func TestOwnedID(t *testing.T) {
	action, owner := splitOwnedID(ownedID("game_bj_hit", "42"))
	if action != "game_bj_hit" || owner != "42" {
		t.Errorf("got %q %q", action, owner)
	}

	// IDs from before ownership was encoded have no owner.
	action, owner = splitOwnedID("game_bj_stand")
	if action != "game_bj_stand" || owner != "" {
		t.Errorf("got %q %q", action, owner)
	}
}

func TestResolveNodes(t *testing.T) {
	if got := resolveNodes("games.bj"); !slices.Equal(got, []string{"games.bj"}) {
		t.Errorf("single node: got %v", got)
	}

	got := resolveNodes("games")
	slices.Sort(got)
	want := []string{"games.bj", "games.poker", "games.roulette", "games.slots"}
	if !slices.Equal(got, want) {
		t.Errorf("category: got %v, want %v", got, want)
	}

	// warn and warnings share a node.
	admin := resolveNodes("admin")
	if n := len(admin); n != len(uniqueStrings(admin)) {
		t.Errorf("duplicate nodes in %v", admin)
	}

	if got := resolveNodes("nope"); got != nil {
		t.Errorf("unknown: got %v", got)
	}
}

func TestEveryCommandHasANode(t *testing.T) {
	for _, cmd := range AllCommands() {
		_, gated := CommandPermissionMap[cmd.Name]
		if gated == PublicCommands[cmd.Name] {
			t.Errorf("command %q must have exactly one of a node or public access", cmd.Name)
		}
	}
}

func TestPublicCommandsSkipNodes(t *testing.T) {
	member := &discordgo.Member{User: &discordgo.User{ID: "someone"}}
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: "g1", Member: member}}
	if !hasPermission(i, "ticket") {
		t.Error("anyone may open a ticket")
	}
	// Without a database no node can be checked, so gated commands are denied.
	if hasPermission(i, "ban") {
		t.Error("ban must stay gated")
	}
}

func TestSettlementLine(t *testing.T) {
	tests := []struct {
		delta int
		want  string
	}{
		{150, "won **$150**"},
		{-100, "lost **$100**"},
		{0, "returned"},
	}
	for _, tt := range tests {
		res := casino.Result{Settlement: &casino.Settlement{Delta: tt.delta, Label: "Outcome"}}
		if got := settlementLine(res); !strings.Contains(got, tt.want) {
			t.Errorf("delta %d: %q does not contain %q", tt.delta, got, tt.want)
		}
	}

	if settlementColor(casino.Result{}) != 0x5865F2 {
		t.Error("unfinished games should use the neutral color")
	}
}

func TestCategoryFields(t *testing.T) {
	fields := categoryFields([]string{"games.slots", "admin.ban", "games.bj"})
	if len(fields) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(fields))
	}
	if fields[0].Name != "admin" || fields[1].Name != "games" {
		t.Errorf("categories out of order: %s, %s", fields[0].Name, fields[1].Name)
	}
	if fields[1].Value != "`games.bj`, `games.slots`" {
		t.Errorf("unexpected nodes %q", fields[1].Value)
	}
}

func TestPurgeableSkipsOldMessages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []*discordgo.Message{
		{ID: "new", Timestamp: now.Add(-time.Hour)},
		{ID: "edge", Timestamp: now.Add(-bulkDeleteWindow)},
		{ID: "old", Timestamp: now.Add(-30 * 24 * time.Hour)},
	}
	if got := purgeable(messages, now); !slices.Equal(got, []string{"new"}) {
		t.Errorf("got %v", got)
	}
}

func TestExpiredPokerDropsPendingDiscards(t *testing.T) {
	setDiscards("round-1", []int{0, 3})
	setDiscards("round-2", []int{1})
	t.Cleanup(func() { takeDiscards("round-2") })

	// No message attached, so the handler never touches the session.
	GameExpiredHandler(nil)(casino.Result{RoundID: "round-1", Game: casino.GamePoker, Key: casino.Key{UserID: "u1", GuildID: "g1"}})

	pendingDiscardsMu.Lock()
	_, stale := pendingDiscards["round-1"]
	_, other := pendingDiscards["round-2"]
	pendingDiscardsMu.Unlock()
	if stale {
		t.Error("expired round's discards were kept")
	}
	if !other {
		t.Error("another round's discards were dropped")
	}
}

func TestRecentGamesField(t *testing.T) {
	if recentGamesField(nil) != nil {
		t.Error("no rounds should add no field")
	}

	at := time.Unix(1700000000, 0)
	f := recentGamesField([]database.Round{
		{Game: "slots", Delta: 400, Outcome: "win", SettledAt: at},
		{Game: "roulette", Delta: -50, Outcome: "lose", SettledAt: at},
	})
	lines := strings.Split(strings.TrimSpace(f.Value), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", f.Value)
	}
	if !strings.HasPrefix(lines[0], "+ $400 · slots (win)") {
		t.Errorf("unexpected win line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "- $50 · roulette (lose)") {
		t.Errorf("unexpected loss line %q", lines[1])
	}
	if !strings.Contains(lines[0], "<t:1700000000:R>") {
		t.Errorf("missing timestamp in %q", lines[0])
	}
}

func TestTicketChannelName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Alice", "ticket-alice"},
		{"big.bob_99", "ticket-bigbob99"},
		{"✨✨", "ticket-member"},
		{strings.Repeat("x", 100), "ticket-" + strings.Repeat("x", 80)},
	}
	for _, tt := range tests {
		if got := ticketChannelName(tt.in); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTicketOverwrites(t *testing.T) {
	ow := ticketOverwrites("g1", "u1", "bot")
	if len(ow) != 3 {
		t.Fatalf("expected 3 overwrites, got %d", len(ow))
	}
	if ow[0].ID != "g1" || ow[0].Type != discordgo.PermissionOverwriteTypeRole || ow[0].Deny&discordgo.PermissionViewChannel == 0 {
		t.Errorf("@everyone must be denied view: %+v", ow[0])
	}
	if ow[1].ID != "u1" || ow[1].Allow&discordgo.PermissionSendMessages == 0 {
		t.Errorf("member must be able to talk: %+v", ow[1])
	}
	if ow[2].ID != "bot" || ow[2].Allow&discordgo.PermissionManageChannels == 0 {
		t.Errorf("bot must manage the channel: %+v", ow[2])
	}
}

func TestCanCloseTicket(t *testing.T) {
	ticket := database.Ticket{UserID: "author"}
	tests := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{"author", &discordgo.Member{User: &discordgo.User{ID: "author"}}, true},
		{"stranger", &discordgo.Member{User: &discordgo.User{ID: "other"}}, false},
		{"channel manager", &discordgo.Member{User: &discordgo.User{ID: "mod"}, Permissions: discordgo.PermissionManageChannels}, true},
		{"admin", &discordgo.Member{User: &discordgo.User{ID: "admin"}, Permissions: discordgo.PermissionAdministrator}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canCloseTicket(tt.member, ticket); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestFunAnswers(t *testing.T) {
	if coinFace(fixedRand(0)) != "Heads" || coinFace(fixedRand(1)) != "Tails" {
		t.Error("coin faces swapped")
	}
	if got := eightBall(fixedRand(0)); got != eightBallAnswers[0] {
		t.Errorf("got %q", got)
	}
	if got := eightBall(fixedRand(len(eightBallAnswers) + 2)); got != eightBallAnswers[2] {
		t.Errorf("answer index must wrap, got %q", got)
	}
}
