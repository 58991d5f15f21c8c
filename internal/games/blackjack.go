package games

import "fmt"

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPlayerBust Status = "player_bust"
	StatusDealerBust Status = "dealer_bust"
	StatusWin        Status = "win"
	StatusLose       Status = "lose"
	StatusPush       Status = "push"
	StatusBlackjack  Status = "blackjack"
)

func (s Status) Terminal() bool {
	return s != StatusInProgress
}

const dealerStandsOn = 17

// CardValue returns the blackjack value of a single card, counting an Ace as 11.
func CardValue(c Card) int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= 10:
		return 10
	default:
		return int(c.Rank)
	}
}

// HandValue scores a blackjack hand. Aces count 11 and are demoted to 1 one
// at a time while the total is over 21. A result above 21 is a bust.
func HandValue(h Hand) int {
	score := 0
	aces := 0
	for _, c := range h {
		score += CardValue(c)
		if c.Rank == Ace {
			aces++
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsNatural reports whether the hand is 21 on exactly two cards.
func IsNatural(h Hand) bool {
	return len(h) == 2 && HandValue(h) == 21
}

// Blackjack is a single-player hand against the dealer.
type Blackjack struct {
	Player Hand
	Dealer Hand
	Deck   *Deck
	Status Status
}

func NewBlackjack(deck *Deck) *Blackjack {
	return &Blackjack{Deck: deck, Status: StatusInProgress}
}

// DealInitial deals two cards each, alternating player and dealer. A player
// natural ends the hand immediately; a dealer natural alongside it is a push.
func (g *Blackjack) DealInitial() error {
	for round := 0; round < 2; round++ {
		c, err := g.Deck.Draw()
		if err != nil {
			return fmt.Errorf("deal player: %w", err)
		}
		g.Player = append(g.Player, c)

		c, err = g.Deck.Draw()
		if err != nil {
			return fmt.Errorf("deal dealer: %w", err)
		}
		g.Dealer = append(g.Dealer, c)
	}

	if IsNatural(g.Player) {
		if IsNatural(g.Dealer) {
			g.Status = StatusPush
		} else {
			g.Status = StatusBlackjack
		}
	}
	return nil
}

// Hit deals one card to the player and returns the new hand value.
func (g *Blackjack) Hit() (int, error) {
	if g.Status.Terminal() {
		return HandValue(g.Player), fmt.Errorf("hit on finished hand (%s)", g.Status)
	}
	c, err := g.Deck.Draw()
	if err != nil {
		return 0, err
	}
	g.Player = append(g.Player, c)

	v := HandValue(g.Player)
	if v > 21 {
		g.Status = StatusPlayerBust
	}
	return v, nil
}

// Stand plays out the dealer (draws below 17) and decides the hand.
func (g *Blackjack) Stand() error {
	if g.Status.Terminal() {
		return fmt.Errorf("stand on finished hand (%s)", g.Status)
	}
	dScore := HandValue(g.Dealer)
	for dScore < dealerStandsOn {
		c, err := g.Deck.Draw()
		if err != nil {
			return fmt.Errorf("dealer draw: %w", err)
		}
		g.Dealer = append(g.Dealer, c)
		dScore = HandValue(g.Dealer)
	}

	pScore := HandValue(g.Player)
	switch {
	case dScore > 21:
		g.Status = StatusDealerBust
	case pScore > dScore:
		g.Status = StatusWin
	case pScore < dScore:
		g.Status = StatusLose
	default:
		g.Status = StatusPush
	}
	return nil
}
