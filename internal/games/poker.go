package games

import (
	"fmt"
	"sort"

	"github.com/paulhankin/poker"
)

type HandRank int

const (
	RankHighCard HandRank = iota + 1
	RankPair
	RankTwoPair
	RankThreeOfAKind
	RankStraight
	RankFlush
	RankFullHouse
	RankFourOfAKind
	RankStraightFlush
	RankRoyalFlush
)

func (r HandRank) String() string {
	return []string{
		"", "High Card", "Pair", "Two Pair", "Three of a Kind",
		"Straight", "Flush", "Full House", "Four of a Kind",
		"Straight Flush", "Royal Flush",
	}[r]
}

// Multiplier is the house pay table for a 5-card draw hand.
func (r HandRank) Multiplier() int {
	switch r {
	case RankRoyalFlush:
		return 100
	case RankStraightFlush:
		return 50
	case RankFourOfAKind:
		return 25
	case RankFullHouse:
		return 7
	case RankFlush:
		return 5
	case RankStraight:
		return 4
	case RankThreeOfAKind:
		return 3
	case RankTwoPair:
		return 2
	default:
		return 0
	}
}

// Evaluate5CardHand classifies five distinct cards. Only the category is
// returned; kickers never matter against the house pay table.
func Evaluate5CardHand(cards []Card) (HandRank, error) {
	if len(cards) != 5 {
		return 0, fmt.Errorf("need 5 cards, got %d", len(cards))
	}
	seen := make(map[Card]bool, 5)
	counts := make(map[Rank]int, 5)
	flush := true
	for _, c := range cards {
		if seen[c] {
			return 0, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		counts[c.Rank]++
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}

	ranks := make([]Rank, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	straight := false
	if len(ranks) == 5 {
		if ranks[4]-ranks[0] == 4 {
			straight = true
		} else if ranks[0] == 2 && ranks[1] == 3 && ranks[2] == 4 && ranks[3] == 5 && ranks[4] == Ace {
			straight = true
		}
	}

	groups := make([]int, 0, len(counts))
	for _, n := range counts {
		groups = append(groups, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groups)))

	switch {
	case straight && flush && ranks[0] == 10:
		return RankRoyalFlush, nil
	case straight && flush:
		return RankStraightFlush, nil
	case groups[0] == 4:
		return RankFourOfAKind, nil
	case groups[0] == 3 && groups[1] == 2:
		return RankFullHouse, nil
	case flush:
		return RankFlush, nil
	case straight:
		return RankStraight, nil
	case groups[0] == 3:
		return RankThreeOfAKind, nil
	case groups[0] == 2 && groups[1] == 2:
		return RankTwoPair, nil
	case groups[0] == 2:
		return RankPair, nil
	default:
		return RankHighCard, nil
	}
}

func toPokerCard(c Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit {
	case Clubs:
		s = poker.Club
	case Diamonds:
		s = poker.Diamond
	case Hearts:
		s = poker.Heart
	case Spades:
		s = poker.Spade
	default:
		var zero poker.Card
		return zero, fmt.Errorf("unknown suit %q", c.Suit)
	}
	r := poker.Rank(c.Rank)
	if c.Rank == Ace {
		r = 1
	}
	return poker.MakeCard(s, r)
}

// DescribeHand returns a readable description such as "ace-high straight flush".
func DescribeHand(cards []Card) (string, error) {
	pc := make([]poker.Card, 0, len(cards))
	for _, c := range cards {
		p, err := toPokerCard(c)
		if err != nil {
			return "", err
		}
		pc = append(pc, p)
	}
	return poker.Describe(pc)
}

// Draw is a single hand of 5-card draw against the house pay table.
type Draw struct {
	Hand   Hand
	Deck   *Deck
	Drawn  bool
	Result HandRank
}

func NewDraw(deck *Deck) *Draw {
	return &Draw{Deck: deck}
}

// Deal gives the player five cards.
func (d *Draw) Deal() error {
	for len(d.Hand) < 5 {
		c, err := d.Deck.Draw()
		if err != nil {
			return err
		}
		d.Hand = append(d.Hand, c)
	}
	return nil
}

// Discard replaces the cards at the given positions and evaluates the
// final hand. It may only be called once per hand.
func (d *Draw) Discard(positions []int) (HandRank, error) {
	if d.Drawn {
		return d.Result, fmt.Errorf("cards already drawn")
	}
	for _, p := range positions {
		if p < 0 || p >= len(d.Hand) {
			return 0, fmt.Errorf("card position %d out of range", p)
		}
	}
	replaced := make(map[int]bool, len(positions))
	for _, p := range positions {
		if replaced[p] {
			continue
		}
		replaced[p] = true
		c, err := d.Deck.Draw()
		if err != nil {
			return 0, err
		}
		d.Hand[p] = c
	}

	rank, err := Evaluate5CardHand(d.Hand)
	if err != nil {
		return 0, err
	}
	d.Drawn = true
	d.Result = rank
	return rank, nil
}
