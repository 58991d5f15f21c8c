package casino

import (
	"errors"
	"sync"
	"testing"
	"time"

	"guildbot/internal/database"
	"guildbot/internal/games"
)

type memStore struct {
	mu       sync.Mutex
	balances map[Key]int
	config   database.GameConfig
	played   map[string]time.Time
	rounds   []database.Round
}

func newMemStore() *memStore {
	return &memStore{
		balances: make(map[Key]int),
		config:   database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 10000},
		played:   make(map[string]time.Time),
	}
}

func (m *memStore) GetBalance(userID, guildID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[Key{userID, guildID}], nil
}

func (m *memStore) AdjustBalance(userID, guildID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[Key{userID, guildID}] += delta
	return nil
}

func (m *memStore) GameConfig(guildID, game string) (database.GameConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config, nil
}

func (m *memStore) LastPlayed(userID, guildID, game string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.played[userID+guildID+game]
	return at, ok, nil
}

func (m *memStore) MarkPlayed(userID, guildID, game string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played[userID+guildID+game] = at
	return nil
}

func (m *memStore) RecordRound(r database.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *memStore) roundCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rounds)
}

type constRand int

func (c constRand) IntN(n int) int { return int(c) % n }

func c(r games.Rank, s games.Suit) games.Card { return games.Card{Rank: r, Suit: s} }

var player = Key{UserID: "u1", GuildID: "g1"}

func newTestService(store *memStore, timeout time.Duration, deck ...games.Card) *Service {
	return NewService(store, Options{
		Timeout: timeout,
		Rand:    constRand(0),
		NewDeck: func() *games.Deck { return games.StackedDeck(deck...) },
	})
}

func TestNaturalSettlesImmediately(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	// Player A K, dealer 9 7.
	svc := newTestService(store, time.Hour,
		c(games.Ace, games.Spades), c(9, games.Hearts), c(games.King, games.Spades), c(7, games.Diamonds))

	res, err := svc.StartBlackjack(player, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Finished() || res.Status != games.StatusBlackjack || res.Settlement.Delta != 150 {
		t.Fatalf("expected blackjack paying 150, got %+v", res)
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 1150 {
		t.Errorf("expected 1150, got %d", bal)
	}
	if svc.ActiveGames() != 0 {
		t.Error("a natural must not park a session")
	}
}

func TestNaturalAgainstDealerNaturalPushes(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	svc := newTestService(store, time.Hour,
		c(games.Ace, games.Spades), c(games.Ace, games.Hearts), c(games.King, games.Spades), c(games.Queen, games.Diamonds))

	res, err := svc.StartBlackjack(player, 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != games.StatusPush || res.Settlement.Delta != 0 {
		t.Errorf("expected push, got %+v", res)
	}
}

func TestHitToBust(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	// Player 10 6, dealer 9 8, then the player draws a 6 for 22.
	svc := newTestService(store, time.Hour,
		c(10, games.Spades), c(9, games.Hearts), c(6, games.Spades), c(8, games.Diamonds), c(6, games.Clubs))

	res, err := svc.StartBlackjack(player, 100)
	if err != nil || res.Finished() {
		t.Fatalf("expected a parked game, got %+v (%v)", res, err)
	}
	if svc.ActiveGames() != 1 {
		t.Fatal("expected one active game")
	}
	if keys := svc.ActiveKeys(); len(keys) != 1 || keys[0] != player {
		t.Fatalf("expected %v to be active, got %v", player, keys)
	}

	res, err = svc.Hit(player)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != games.StatusPlayerBust || res.Settlement.Delta != -100 {
		t.Fatalf("expected bust for -100, got %+v", res)
	}
	if games.HandValue(res.Player) != 22 {
		t.Errorf("expected 22, got %d", games.HandValue(res.Player))
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 900 {
		t.Errorf("expected 900, got %d", bal)
	}
	if _, err := svc.Stand(player); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after bust, got %v", err)
	}
	if keys := svc.ActiveKeys(); len(keys) != 0 {
		t.Errorf("expected no active players, got %v", keys)
	}
}

func TestStandAppliesHouseEdge(t *testing.T) {
	store := newMemStore()
	store.config.HouseEdge = 0.1
	store.balances[player] = 1000
	// Player 10 9, dealer 10 7 stands on 17.
	svc := newTestService(store, time.Hour,
		c(10, games.Spades), c(10, games.Hearts), c(9, games.Spades), c(7, games.Diamonds))

	if _, err := svc.StartBlackjack(player, 100); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Stand(player)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != games.StatusWin || res.Settlement.Delta != 90 {
		t.Errorf("expected win paying 90, got %+v", res)
	}
}

func TestStandOnEmptyDeckAborts(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	// Dealer needs a card that is not there.
	svc := newTestService(store, time.Hour,
		c(10, games.Spades), c(10, games.Hearts), c(9, games.Spades), c(2, games.Diamonds))

	if _, err := svc.StartBlackjack(player, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Stand(player); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 1000 {
		t.Errorf("aborted rounds must not move money, got %d", bal)
	}
	if svc.ActiveGames() != 0 {
		t.Error("aborted game must be removed")
	}
}

func TestSecondGameRejected(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	svc := newTestService(store, time.Hour,
		c(10, games.Spades), c(9, games.Hearts), c(6, games.Spades), c(8, games.Diamonds))

	if _, err := svc.StartBlackjack(player, 100); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if _, err := svc.StartPoker(player, 100); !errors.As(err, &verr) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestRouletteLoss(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 500
	svc := NewService(store, Options{Timeout: time.Hour, Rand: constRand(32)})

	res, err := svc.SpinRoulette(player, 50, games.Black)
	if err != nil {
		t.Fatal(err)
	}
	if res.Pocket.Color != games.Red || res.Settlement.Delta != -50 {
		t.Errorf("expected red and -50, got %+v", res)
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 450 {
		t.Errorf("expected 450, got %d", bal)
	}
}

func TestRouletteGreen(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 500
	svc := NewService(store, Options{Timeout: time.Hour, Rand: constRand(0)})

	res, err := svc.SpinRoulette(player, 10, games.Green)
	if err != nil {
		t.Fatal(err)
	}
	if res.Settlement.Delta != 140 {
		t.Errorf("expected 140, got %d", res.Settlement.Delta)
	}
}

func TestSlotsJackpot(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 500
	// The last weight unit always lands on the rarest symbol.
	svc := NewService(store, Options{Timeout: time.Hour, Rand: lastRand{}})

	res, err := svc.SpinSlots(player, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reels[0].Face != "🎰" || res.Settlement.Delta != 140 {
		t.Errorf("expected triple 🎰 paying 140, got %+v", res)
	}
}

type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func TestPokerRoyalFlush(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 100
	svc := newTestService(store, time.Hour,
		c(games.Ace, games.Spades), c(games.King, games.Spades), c(games.Queen, games.Spades),
		c(games.Jack, games.Spades), c(2, games.Hearts), c(10, games.Spades))

	res, err := svc.StartPoker(player, 10)
	if err != nil || res.Finished() {
		t.Fatalf("expected a parked hand, got %+v (%v)", res, err)
	}
	res, err = svc.DrawPoker(player, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rank != games.RankRoyalFlush || res.Settlement.Delta != 990 {
		t.Errorf("expected royal flush paying 990, got %+v", res)
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 1090 {
		t.Errorf("expected 1090, got %d", bal)
	}
}

func TestDrawPokerRejectsBadPosition(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 100
	svc := newTestService(store, time.Hour, games.NewDeck().Cards()...)

	if _, err := svc.StartPoker(player, 10); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if _, err := svc.DrawPoker(player, []int{5}); !errors.As(err, &verr) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if svc.ActiveGames() != 1 {
		t.Error("a rejected draw must leave the hand in play")
	}
}

func TestAcceptValidation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name   string
		config database.GameConfig
		played bool
		bet    int
	}{
		{"disabled", database.GameConfig{Enabled: false, MinBet: 1, MaxBet: 100}, false, 10},
		{"zero bet", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 100}, false, 0},
		{"below min", database.GameConfig{Enabled: true, MinBet: 20, MaxBet: 100}, false, 10},
		{"above max", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 100}, false, 101},
		{"over balance", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 1000}, false, 600},
		{"cooldown", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 100, Cooldown: time.Minute}, true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.config = tt.config
			store.balances[player] = 500
			if tt.played {
				store.played["u1g1slots"] = now.Add(-10 * time.Second)
			}
			svc := NewService(store, Options{Timeout: time.Hour, Now: func() time.Time { return now }})

			var verr *ValidationError
			if _, err := svc.SpinSlots(player, tt.bet); !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if bal, _ := store.GetBalance("u1", "g1"); bal != 500 {
				t.Errorf("rejected bets must not move money, got %d", bal)
			}
			if store.roundCount() != 0 {
				t.Error("rejected bets must not be recorded")
			}
		})
	}
}

func TestAcceptCountsParkedBet(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 150
	svc := newTestService(store, time.Hour,
		c(10, games.Spades), c(9, games.Hearts), c(6, games.Spades), c(8, games.Diamonds))

	if _, err := svc.StartBlackjack(player, 100); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if _, err := svc.SpinSlots(player, 100); !errors.As(err, &verr) {
		t.Errorf("expected the parked bet to be held back, got %v", err)
	}
}

func TestExpiryForfeitsBet(t *testing.T) {
	store := newMemStore()
	store.balances[player] = 1000
	svc := newTestService(store, 20*time.Millisecond,
		c(10, games.Spades), c(9, games.Hearts), c(6, games.Spades), c(8, games.Diamonds))

	expired := make(chan Result, 1)
	svc.OnExpired(func(r Result) { expired <- r })

	if _, err := svc.StartBlackjack(player, 100); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-expired:
		if r.Settlement.Delta != -100 {
			t.Errorf("expected -100, got %d", r.Settlement.Delta)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("game never expired")
	}
	if bal, _ := store.GetBalance("u1", "g1"); bal != 900 {
		t.Errorf("expected 900, got %d", bal)
	}
	if _, err := svc.Hit(player); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after expiry, got %v", err)
	}
}

func TestExpiryRacingStandSettlesOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := newMemStore()
		store.balances[player] = 1000
		// Player 17 against dealer 19: standing loses the same 100 the timeout would.
		svc := newTestService(store, 5*time.Millisecond,
			c(10, games.Spades), c(10, games.Hearts), c(7, games.Spades), c(9, games.Diamonds))

		var expiredOnce sync.WaitGroup
		expiredOnce.Add(1)
		var fired sync.Once
		svc.OnExpired(func(Result) { fired.Do(expiredOnce.Done) })

		if _, err := svc.StartBlackjack(player, 100); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		_, err := svc.Stand(player)
		if err != nil && !errors.Is(err, ErrNoSession) {
			t.Fatal(err)
		}
		if err != nil {
			expiredOnce.Wait()
		}
		// Let a losing timer run if it is going to.
		time.Sleep(10 * time.Millisecond)

		if n := store.roundCount(); n != 1 {
			t.Fatalf("iteration %d: expected exactly one settlement, got %d", i, n)
		}
		if bal, _ := store.GetBalance("u1", "g1"); bal != 900 {
			t.Fatalf("iteration %d: expected 900, got %d", i, bal)
		}
	}
}

// gatedStore makes concurrent balance reads meet before either returns, so
// two acceptances overlap unless something serializes them.
type gatedStore struct {
	*memStore
	meet chan struct{}
}

func (g *gatedStore) GetBalance(userID, guildID string) (int, error) {
	bal, err := g.memStore.GetBalance(userID, guildID)
	select {
	case g.meet <- struct{}{}:
	case <-g.meet:
	case <-time.After(100 * time.Millisecond):
	}
	return bal, err
}

func TestConcurrentSpinsCannotOverdraw(t *testing.T) {
	mem := newMemStore()
	mem.balances[player] = 100
	mem.config.Cooldown = time.Hour
	store := &gatedStore{memStore: mem, meet: make(chan struct{})}
	// Pocket 0 is green, so a red bet loses.
	svc := NewService(store, Options{Timeout: time.Hour, Rand: constRand(0)})

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SpinRoulette(player, 100, games.Red)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		var verr *ValidationError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &verr):
			rejected++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Errorf("expected one spin and one rejection, got %d and %d", ok, rejected)
	}
	if bal, _ := mem.GetBalance("u1", "g1"); bal != 0 {
		t.Errorf("expected 0, got %d", bal)
	}
	if n := mem.roundCount(); n != 1 {
		t.Errorf("expected one round, got %d", n)
	}
}

func TestStartDuringExpiryCountsForfeit(t *testing.T) {
	for i := 0; i < 20; i++ {
		store := newMemStore()
		store.balances[player] = 100
		svc := newTestService(store, 5*time.Millisecond,
			c(10, games.Spades), c(10, games.Hearts), c(7, games.Spades), c(9, games.Diamonds))

		if _, err := svc.StartBlackjack(player, 100); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		// Either the game is still parked and its bet is held back, or the
		// forfeit already landed. Both leave nothing to bet.
		if _, err := svc.SpinSlots(player, 100); err == nil {
			t.Fatalf("iteration %d: spin accepted with the whole balance owed", i)
		}
		time.Sleep(50 * time.Millisecond)
		if bal, _ := store.GetBalance("u1", "g1"); bal != 0 {
			t.Fatalf("iteration %d: expected 0, got %d", i, bal)
		}
	}
}
