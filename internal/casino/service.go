package casino

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"guildbot/internal/database"
	"guildbot/internal/games"
	"guildbot/internal/session"

	"github.com/google/uuid"
)

type Game string

const (
	GameBlackjack Game = "blackjack"
	GamePoker     Game = "poker"
	GameSlots     Game = "slots"
	GameRoulette  Game = "roulette"
)

var Games = []Game{GameBlackjack, GamePoker, GameSlots, GameRoulette}

func ParseGame(name string) (Game, bool) {
	for _, g := range Games {
		if string(g) == name {
			return g, true
		}
	}
	return "", false
}

var (
	// ErrNoSession means the action referenced a game that finished or expired.
	ErrNoSession = errors.New("no active game")
	// ErrAborted means the round hit an engine invariant violation and was
	// discarded without touching the balance.
	ErrAborted = errors.New("game aborted")
)

// ValidationError rejects a bet before any game state exists.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Key identifies a player within a guild. Balances and sessions are scoped to it.
type Key struct {
	UserID  string
	GuildID string
}

func (k Key) String() string { return k.UserID + "@" + k.GuildID }

// Store is the persistence the casino needs.
type Store interface {
	GetBalance(userID, guildID string) (int, error)
	AdjustBalance(userID, guildID string, delta int) error
	GameConfig(guildID, game string) (database.GameConfig, error)
	LastPlayed(userID, guildID, game string) (time.Time, bool, error)
	MarkPlayed(userID, guildID, game string, at time.Time) error
	RecordRound(r database.Round) error
}

// Table is one parked, in-progress game.
type Table struct {
	ID        string
	Key       Key
	Game      Game
	Bet       int
	Config    database.GameConfig
	Blackjack *games.Blackjack
	Poker     *games.Draw
	ChannelID string
	MessageID string
	StartedAt time.Time

	mu sync.Mutex
}

// Result is what the dispatcher renders after every action.
type Result struct {
	RoundID    string
	Key        Key
	Game       Game
	Bet        int
	Status     games.Status
	Rank       games.HandRank
	Player     games.Hand
	Dealer     games.Hand
	Reels      [3]games.Symbol
	Pocket     games.Pocket
	Settlement *Settlement
	ChannelID  string
	MessageID  string
}

// Finished reports whether the round has been settled.
func (r Result) Finished() bool { return r.Settlement != nil }

type Options struct {
	// Timeout is how long a parked game may wait for its player.
	Timeout time.Duration
	Rand    games.Rand
	Now     func() time.Time
	// NewDeck supplies the deck for each card game. Defaults to a freshly
	// shuffled 52-card deck.
	NewDeck func() *games.Deck
}

// Service runs wager games: bet acceptance, the session lifecycle and
// settlement. Settlement is the only path that adjusts balances for games.
type Service struct {
	store  Store
	tables *session.Store[Key, *Table]
	rng    games.Rand
	now    func() time.Time
	deck   func() *games.Deck

	players playerLocks

	hookMu    sync.Mutex
	onExpired func(Result)
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:   store,
		rng:     opts.Rand,
		now:     opts.Now,
		deck:    opts.NewDeck,
		players: playerLocks{m: make(map[Key]*playerLock)},
	}
	if s.rng == nil {
		s.rng = games.DefaultRand
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.deck == nil {
		s.deck = func() *games.Deck { return games.NewShuffledDeck(s.rng) }
	}
	s.tables = session.NewStore[Key, *Table](opts.Timeout, s.expire)
	s.tables.LockKeysWith(s.players.lock)
	return s
}

// OnExpired registers a callback that receives the forced settlement of
// every abandoned game, e.g. to edit the game message.
func (s *Service) OnExpired(fn func(Result)) {
	s.hookMu.Lock()
	s.onExpired = fn
	s.hookMu.Unlock()
}

// ActiveGames returns the number of parked games.
func (s *Service) ActiveGames() int {
	return s.tables.Len()
}

// ActiveKeys returns the players that currently have a parked game.
func (s *Service) ActiveKeys() []Key {
	return s.tables.Keys()
}

// Active returns the player's parked game, if any.
func (s *Service) Active(key Key) (*Table, bool) {
	return s.tables.Get(key)
}

// Peek returns the current state of the player's parked game.
func (s *Service) Peek(key Key) (Result, error) {
	t, ok := s.tables.Get(key)
	if !ok {
		return Result{}, ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result(), nil
}

// AttachMessage records where the game is displayed.
func (s *Service) AttachMessage(key Key, channelID, messageID string) {
	t, ok := s.tables.Get(key)
	if !ok {
		return
	}
	t.mu.Lock()
	t.ChannelID, t.MessageID = channelID, messageID
	t.mu.Unlock()
}

// playerLocks serializes everything that reads or moves one player's money:
// acceptance through settle or park, and every later action on the table.
// Lock order is player, then table.
type playerLocks struct {
	mu sync.Mutex
	m  map[Key]*playerLock
}

type playerLock struct {
	sync.Mutex
	refs int
}

func (p *playerLocks) lock(key Key) (unlock func()) {
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		l = &playerLock{}
		p.m[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(p.m, key)
		}
		p.mu.Unlock()
	}
}

// Accept checks every precondition for a bet and returns the guild's game
// configuration. Nothing is mutated. Callers that go on to play must hold
// the player's lock until the round is settled or parked.
func (s *Service) Accept(key Key, game Game, bet int) (database.GameConfig, error) {
	cfg, err := s.store.GameConfig(key.GuildID, string(game))
	if err != nil {
		return cfg, fmt.Errorf("load %s config: %w", game, err)
	}
	if !cfg.Enabled {
		return cfg, reject("%s is disabled in this server.", game)
	}
	if bet <= 0 {
		return cfg, reject("Bet must be a positive amount.")
	}
	if bet < cfg.MinBet || bet > cfg.MaxBet {
		return cfg, reject("Bet must be between $%d and $%d.", cfg.MinBet, cfg.MaxBet)
	}

	if cfg.Cooldown > 0 {
		last, ok, err := s.store.LastPlayed(key.UserID, key.GuildID, string(game))
		if err != nil {
			return cfg, fmt.Errorf("load cooldown: %w", err)
		}
		if ok {
			if wait := cfg.Cooldown - s.now().Sub(last); wait > 0 {
				return cfg, reject("You can play %s again in %s.", game, wait.Round(time.Second))
			}
		}
	}

	bal, err := s.store.GetBalance(key.UserID, key.GuildID)
	if err != nil {
		return cfg, fmt.Errorf("load balance: %w", err)
	}
	// A parked game's bet is still owed.
	if t, ok := s.tables.Get(key); ok {
		bal -= t.Bet
	}
	if bet > bal {
		return cfg, reject("Insufficient funds. You have $%d available.", max(bal, 0))
	}
	return cfg, nil
}

func (s *Service) markPlayed(key Key, game Game) {
	if err := s.store.MarkPlayed(key.UserID, key.GuildID, string(game), s.now()); err != nil {
		log.Printf("[CASINO ERROR] mark %s played for %s: %v", game, key, err)
	}
}

func (s *Service) newTable(key Key, game Game, bet int, cfg database.GameConfig) *Table {
	return &Table{
		ID:        uuid.NewString(),
		Key:       key,
		Game:      game,
		Bet:       bet,
		Config:    cfg,
		StartedAt: s.now(),
	}
}

// park stores a table unless the player already has one.
func (s *Service) park(t *Table) error {
	if _, ok := s.tables.Get(t.Key); ok {
		return reject("You already have a game in progress.")
	}
	s.tables.Create(t.Key, t)
	return nil
}

func (s *Service) claim(t *Table) bool {
	_, ok := s.tables.Claim(t.Key, func(cur *Table) bool { return cur == t })
	return ok
}

// held reports whether t is still the player's parked game.
func (s *Service) held(t *Table) bool {
	cur, ok := s.tables.Get(t.Key)
	return ok && cur == t
}

// settle applies the delta and appends the round to the ledger. The caller
// must already own the table (claimed it or never parked it).
func (s *Service) settle(t *Table, st Settlement, outcome string) (Result, error) {
	res := t.result()
	res.Settlement = &st

	if err := s.store.AdjustBalance(t.Key.UserID, t.Key.GuildID, st.Delta); err != nil {
		return res, fmt.Errorf("settle round %s: %w", t.ID, err)
	}
	err := s.store.RecordRound(database.Round{
		ID:        t.ID,
		UserID:    t.Key.UserID,
		GuildID:   t.Key.GuildID,
		Game:      string(t.Game),
		Bet:       t.Bet,
		Delta:     st.Delta,
		Outcome:   outcome,
		SettledAt: s.now(),
	})
	if err != nil {
		log.Printf("[CASINO ERROR] %v", err)
	}
	log.Printf("[CASINO SETTLE] %s | %s | Bet: %d | %s | Delta: %d", t.Key, t.Game, t.Bet, outcome, st.Delta)
	return res, nil
}

// abort discards a table after an invariant violation. No balance change.
func (s *Service) abort(t *Table, cause error) error {
	s.claim(t)
	log.Printf("[CASINO ABORT] %s | %s round %s discarded: %v", t.Key, t.Game, t.ID, cause)
	return fmt.Errorf("%w: %v", ErrAborted, cause)
}

// expire runs on the timer with the player's lock held. The hook talks to
// Discord, so it runs on its own goroutine to release the lock promptly.
func (s *Service) expire(key Key, t *Table) {
	t.mu.Lock()
	res, err := s.settle(t, Forfeit(t.Bet), "expired")
	t.mu.Unlock()
	if err != nil {
		log.Printf("[CASINO ERROR] expire %s: %v", key, err)
		return
	}

	s.hookMu.Lock()
	fn := s.onExpired
	s.hookMu.Unlock()
	if fn != nil {
		go fn(res)
	}
}

func (t *Table) result() Result {
	res := Result{
		RoundID:   t.ID,
		Key:       t.Key,
		Game:      t.Game,
		Bet:       t.Bet,
		ChannelID: t.ChannelID,
		MessageID: t.MessageID,
	}
	if bj := t.Blackjack; bj != nil {
		res.Status = bj.Status
		res.Player = append(games.Hand(nil), bj.Player...)
		res.Dealer = append(games.Hand(nil), bj.Dealer...)
	}
	if p := t.Poker; p != nil {
		res.Player = append(games.Hand(nil), p.Hand...)
		res.Rank = p.Result
	}
	return res
}
