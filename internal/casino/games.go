package casino

import (
	"errors"
	"fmt"

	"guildbot/internal/games"
)

// StartBlackjack accepts the bet and deals. A natural on either side settles
// at once; otherwise the game is parked until the player acts or it expires.
func (s *Service) StartBlackjack(key Key, bet int) (Result, error) {
	defer s.players.lock(key)()

	if _, ok := s.tables.Get(key); ok {
		return Result{}, reject("You already have a game in progress.")
	}
	cfg, err := s.Accept(key, GameBlackjack, bet)
	if err != nil {
		return Result{}, err
	}

	t := s.newTable(key, GameBlackjack, bet, cfg)
	t.Blackjack = games.NewBlackjack(s.deck())
	if err := t.Blackjack.DealInitial(); err != nil {
		return Result{}, s.abort(t, err)
	}
	s.markPlayed(key, GameBlackjack)

	if t.Blackjack.Status.Terminal() {
		st := SettleBlackjack(t.Blackjack.Status, bet, cfg.HouseEdge)
		return s.settle(t, st, string(t.Blackjack.Status))
	}
	if err := s.park(t); err != nil {
		return Result{}, err
	}
	return t.result(), nil
}

// Hit draws a card for the player. A bust settles the round.
func (s *Service) Hit(key Key) (Result, error) {
	defer s.players.lock(key)()

	t, ok := s.tables.Get(key)
	if !ok || t.Blackjack == nil {
		return Result{}, ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !s.held(t) {
		return Result{}, ErrNoSession
	}

	bj := t.Blackjack
	if _, err := bj.Hit(); err != nil {
		if errors.Is(err, games.ErrEmptyDeck) {
			return Result{}, s.abort(t, err)
		}
		return Result{}, ErrNoSession
	}
	if bj.Status != games.StatusPlayerBust {
		return t.result(), nil
	}
	// The expiry timer may have claimed the table between held and here.
	if !s.claim(t) {
		return Result{}, ErrNoSession
	}
	return s.settle(t, SettleBlackjack(bj.Status, t.Bet, t.Config.HouseEdge), string(bj.Status))
}

// Stand ends the player's turn, plays the dealer out and settles.
func (s *Service) Stand(key Key) (Result, error) {
	defer s.players.lock(key)()

	t, ok := s.tables.Get(key)
	if !ok || t.Blackjack == nil {
		return Result{}, ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !s.claim(t) {
		return Result{}, ErrNoSession
	}

	bj := t.Blackjack
	if err := bj.Stand(); err != nil {
		return Result{}, s.abort(t, err)
	}
	return s.settle(t, SettleBlackjack(bj.Status, t.Bet, t.Config.HouseEdge), string(bj.Status))
}

// StartPoker accepts the bet and deals five cards.
func (s *Service) StartPoker(key Key, bet int) (Result, error) {
	defer s.players.lock(key)()

	if _, ok := s.tables.Get(key); ok {
		return Result{}, reject("You already have a game in progress.")
	}
	cfg, err := s.Accept(key, GamePoker, bet)
	if err != nil {
		return Result{}, err
	}

	t := s.newTable(key, GamePoker, bet, cfg)
	t.Poker = games.NewDraw(s.deck())
	if err := t.Poker.Deal(); err != nil {
		return Result{}, s.abort(t, err)
	}
	s.markPlayed(key, GamePoker)
	if err := s.park(t); err != nil {
		return Result{}, err
	}
	return t.result(), nil
}

// DrawPoker replaces the cards at the given positions (0-4), evaluates the
// final hand and settles.
func (s *Service) DrawPoker(key Key, positions []int) (Result, error) {
	for _, p := range positions {
		if p < 0 || p >= 5 {
			return Result{}, reject("Card position %d is out of range.", p+1)
		}
	}
	defer s.players.lock(key)()

	t, ok := s.tables.Get(key)
	if !ok || t.Poker == nil {
		return Result{}, ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !s.claim(t) {
		return Result{}, ErrNoSession
	}

	rank, err := t.Poker.Discard(positions)
	if err != nil {
		return Result{}, s.abort(t, err)
	}
	return s.settle(t, SettlePoker(rank, t.Bet), rank.String())
}

// SpinSlots plays one instant slots round.
func (s *Service) SpinSlots(key Key, bet int) (Result, error) {
	defer s.players.lock(key)()

	cfg, err := s.Accept(key, GameSlots, bet)
	if err != nil {
		return Result{}, err
	}
	t := s.newTable(key, GameSlots, bet, cfg)
	reels := games.SpinReels(s.rng)
	s.markPlayed(key, GameSlots)

	st := SettleSlots(reels, bet)
	res, err := s.settle(t, st, outcome(st))
	res.Reels = reels
	return res, err
}

// SpinRoulette plays one instant roulette round on a color.
func (s *Service) SpinRoulette(key Key, bet int, pick games.Color) (Result, error) {
	if !pick.Valid() {
		return Result{}, reject("Pick red, black or green.")
	}
	defer s.players.lock(key)()

	cfg, err := s.Accept(key, GameRoulette, bet)
	if err != nil {
		return Result{}, err
	}
	t := s.newTable(key, GameRoulette, bet, cfg)
	pocket := games.SpinWheel(s.rng)
	s.markPlayed(key, GameRoulette)

	st := SettleRoulette(pick, pocket, bet)
	res, err := s.settle(t, st, fmt.Sprintf("%s on %s %d", outcome(st), pocket.Color, pocket.Number))
	res.Pocket = pocket
	return res, err
}

func outcome(st Settlement) string {
	switch {
	case st.Delta > 0:
		return "win"
	case st.Delta < 0:
		return "lose"
	default:
		return "push"
	}
}
