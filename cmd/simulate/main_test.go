package main

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"guildbot/internal/casino"
	"guildbot/internal/database"
	"guildbot/internal/games"
)

func TestSimulateBalancesMatchNet(t *testing.T) {
	db, err := database.New(":memory:", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: 100})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc := casino.NewService(db, casino.Options{Timeout: time.Hour, Rand: rand.New(rand.NewPCG(1, 2))})

	for _, g := range casino.Games {
		st, err := simulate(svc, db, g, 200, 10, nil)
		if err != nil {
			t.Fatalf("%s: %v", g, err)
		}
		if st.Rounds != 200 || st.Wagered != 2000 {
			t.Errorf("%s: unexpected tallies %+v", g, st)
		}

		// Each round is funded with one bet before it is played.
		bal, err := db.GetBalance("sim-"+string(g), "sim")
		if err != nil {
			t.Fatal(err)
		}
		if bal != st.Wagered+st.Net {
			t.Errorf("%s: balance %d, expected %d", g, bal, st.Wagered+st.Net)
		}
	}
	if svc.ActiveGames() != 0 {
		t.Errorf("expected no parked games, got %d", svc.ActiveGames())
	}
}

func TestDiscards(t *testing.T) {
	c := func(r games.Rank, s games.Suit) games.Card { return games.Card{Rank: r, Suit: s} }

	tests := []struct {
		name string
		hand games.Hand
		want []int
	}{
		{
			name: "keeps the pair",
			hand: games.Hand{c(9, games.Spades), c(games.King, games.Hearts), c(9, games.Clubs), c(2, games.Diamonds), c(5, games.Hearts)},
			want: []int{1, 3, 4},
		},
		{
			name: "keeps the high card",
			hand: games.Hand{c(9, games.Spades), c(games.King, games.Hearts), c(3, games.Clubs), c(2, games.Diamonds), c(5, games.Hearts)},
			want: []int{0, 2, 3, 4},
		},
		{
			name: "stands on a straight",
			hand: games.Hand{c(9, games.Spades), c(10, games.Hearts), c(games.Jack, games.Clubs), c(games.Queen, games.Diamonds), c(games.King, games.Hearts)},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := discards(tt.hand); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
