package games

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrEmptyDeck is returned when a card is drawn from an exhausted deck.
var ErrEmptyDeck = errors.New("deck is empty")

type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank is the card rank, 2 through 14 with Jack=11 ... Ace=14.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var Ranks = []Rank{2, 3, 4, 5, 6, 7, 8, 9, 10, Jack, Queen, King, Ace}

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// Card represents a playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// Rand is the subset of *rand.Rand the engine needs.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source. It is not
// cryptographically secure; stakes are virtual currency only.
var DefaultRand Rand = globalRand{}

// Deck is a pile of cards consumed from the end.
type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck in canonical order.
func NewDeck() *Deck {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// NewShuffledDeck creates a standard deck and shuffles it with rng.
func NewShuffledDeck(rng Rand) *Deck {
	d := NewDeck()
	Shuffle(d, rng)
	return d
}

// StackedDeck builds a deck whose Draw order is the given cards, first to last.
func StackedDeck(drawOrder ...Card) *Deck {
	cards := make([]Card, len(drawOrder))
	for i, c := range drawOrder {
		cards[len(drawOrder)-1-i] = c
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck in place (Fisher-Yates).
func Shuffle(d *Deck, rng Rand) {
	if rng == nil {
		rng = DefaultRand
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card of the deck.
func (d *Deck) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, nil
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Hand is an ordered set of cards held by one participant.
type Hand []Card

func (h Hand) String() string {
	if len(h) == 0 {
		return "None"
	}
	s := make([]string, 0, len(h))
	for _, c := range h {
		s = append(s, "`"+c.String()+"`")
	}
	return strings.Join(s, " ")
}
