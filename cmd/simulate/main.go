package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"guildbot/internal/casino"
	"guildbot/internal/database"
	"guildbot/internal/games"

	"github.com/pterm/pterm"
)

// stats is the observed outcome of many rounds of one game.
type stats struct {
	Game    casino.Game
	Rounds  int
	Wagered int
	Net     int
	Wins    int
	Pushes  int
}

// RTP is the return to player: what came back per unit wagered.
func (s stats) RTP() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.Wagered+s.Net) / float64(s.Wagered)
}

func main() {
	rounds := flag.Int("rounds", 10000, "rounds to play per game")
	bet := flag.Int("bet", 100, "bet per round")
	edge := flag.Float64("edge", 0, "blackjack house edge")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	verbose := flag.Bool("v", false, "log every settlement")
	flag.Parse()

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	// The casino logs every settlement through the log package.
	log.SetFlags(0)
	if *verbose {
		log.SetOutput(slog.NewLogLogger(handler, slog.LevelInfo).Writer())
	} else {
		log.SetOutput(io.Discard)
	}

	db, err := database.New(":memory:", database.GameConfig{Enabled: true, MinBet: 1, MaxBet: *bet, HouseEdge: *edge})
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	svc := casino.NewService(db, casino.Options{Timeout: time.Hour, Rand: rng})

	pterm.DefaultHeader.Println("Casino simulation")
	pterm.Info.Printfln("%d rounds per game, bet %d, seed %d", *rounds, *bet, *seed)

	var results []stats
	for _, g := range casino.Games {
		pb, _ := pterm.DefaultProgressbar.WithTotal(*rounds).WithTitle(string(g)).Start()
		st, err := simulate(svc, db, g, *rounds, *bet, pb.Increment)
		pb.Stop()
		if err != nil {
			logger.Error("simulation failed", "game", g, "err", err)
			os.Exit(1)
		}
		results = append(results, st)
	}

	data := pterm.TableData{{"Game", "Rounds", "Wagered", "Player Net", "Win %", "Push %", "RTP"}}
	for _, st := range results {
		data = append(data, []string{
			string(st.Game),
			fmt.Sprint(st.Rounds),
			fmt.Sprint(st.Wagered),
			fmt.Sprint(st.Net),
			fmt.Sprintf("%.2f", 100*float64(st.Wins)/float64(st.Rounds)),
			fmt.Sprintf("%.2f", 100*float64(st.Pushes)/float64(st.Rounds)),
			rtpColor(st.RTP()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func rtpColor(rtp float64) string {
	s := fmt.Sprintf("%.2f%%", rtp*100)
	if rtp > 1 {
		return pterm.LightRed(s)
	}
	return pterm.LightGreen(s)
}

// simulate plays rounds of one game for a bot player and tallies the
// settlements. Balances are topped up so every bet is accepted.
func simulate(svc *casino.Service, db *database.DB, game casino.Game, rounds, bet int, tick func() *pterm.ProgressbarPrinter) (stats, error) {
	key := casino.Key{UserID: "sim-" + string(game), GuildID: "sim"}
	st := stats{Game: game}

	for n := 0; n < rounds; n++ {
		if err := db.AdjustBalance(key.UserID, key.GuildID, bet); err != nil {
			return st, err
		}
		res, err := play(svc, key, game, bet)
		if err != nil {
			return st, err
		}

		st.Rounds++
		st.Wagered += bet
		st.Net += res.Settlement.Delta
		switch {
		case res.Settlement.Delta > 0:
			st.Wins++
		case res.Settlement.Delta == 0:
			st.Pushes++
		}
		if tick != nil {
			tick()
		}
	}
	return st, nil
}

func play(svc *casino.Service, key casino.Key, game casino.Game, bet int) (casino.Result, error) {
	switch game {
	case casino.GameBlackjack:
		res, err := svc.StartBlackjack(key, bet)
		// Hit below 17, like the dealer.
		for err == nil && !res.Finished() && games.HandValue(res.Player) < 17 {
			res, err = svc.Hit(key)
		}
		if err == nil && !res.Finished() {
			res, err = svc.Stand(key)
		}
		return res, err

	case casino.GamePoker:
		res, err := svc.StartPoker(key, bet)
		if err != nil {
			return res, err
		}
		return svc.DrawPoker(key, discards(res.Player))

	case casino.GameSlots:
		return svc.SpinSlots(key, bet)

	default:
		return svc.SpinRoulette(key, bet, games.Red)
	}
}

// discards keeps made hands and any paired ranks, otherwise only the highest card.
func discards(hand games.Hand) []int {
	if rank, err := games.Evaluate5CardHand(hand); err == nil && rank >= games.RankStraight {
		return nil
	}

	counts := make(map[games.Rank]int, len(hand))
	for _, c := range hand {
		counts[c.Rank]++
	}
	high := 0
	paired := false
	for idx, c := range hand {
		if counts[c.Rank] > 1 {
			paired = true
		}
		if c.Rank > hand[high].Rank {
			high = idx
		}
	}

	var out []int
	for idx, c := range hand {
		if paired && counts[c.Rank] > 1 || !paired && idx == high {
			continue
		}
		out = append(out, idx)
	}
	return out
}
