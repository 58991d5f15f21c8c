package casino

import (
	"fmt"
	"math"

	"guildbot/internal/games"
)

// Settlement is the balance change for a finished round.
type Settlement struct {
	Delta int
	Label string
}

// scaled returns floor(bet*factor). The epsilon absorbs float error such as
// 100*0.9 landing just under 90.
func scaled(bet int, factor float64) int {
	return int(math.Floor(float64(bet)*factor + 1e-9))
}

// SettleBlackjack converts a terminal blackjack status into a delta.
func SettleBlackjack(status games.Status, bet int, houseEdge float64) Settlement {
	switch status {
	case games.StatusBlackjack:
		return Settlement{Delta: scaled(bet, 1.5*(1-houseEdge)), Label: "Blackjack!"}
	case games.StatusWin:
		return Settlement{Delta: scaled(bet, 1-houseEdge), Label: "Won"}
	case games.StatusDealerBust:
		return Settlement{Delta: scaled(bet, 1-houseEdge), Label: "Won (Dealer Bust)"}
	case games.StatusPush:
		return Settlement{Delta: 0, Label: "Push"}
	case games.StatusPlayerBust:
		return Settlement{Delta: -bet, Label: "Busted"}
	default:
		return Settlement{Delta: -bet, Label: "Lost"}
	}
}

// SettlePoker pays bet*multiplier back on a bet that is always collected.
func SettlePoker(rank games.HandRank, bet int) Settlement {
	m := rank.Multiplier()
	label := rank.String()
	if m > 0 {
		label = fmt.Sprintf("%s (x%d)", rank, m)
	}
	return Settlement{Delta: bet*m - bet, Label: label}
}

// SettleSlots pays the symbol's multiplier on three of a kind and 2x on any pair.
func SettleSlots(reels [3]games.Symbol, bet int) Settlement {
	a, b, c := reels[0].Face, reels[1].Face, reels[2].Face
	switch {
	case a == b && b == c:
		return Settlement{Delta: bet*reels[0].Payout - bet, Label: fmt.Sprintf("Three %s (x%d)", a, reels[0].Payout)}
	case a == b || b == c || a == c:
		return Settlement{Delta: bet*2 - bet, Label: "Two of a kind (x2)"}
	default:
		return Settlement{Delta: -bet, Label: "No match"}
	}
}

// SettleRoulette pays 2x on a red or black hit and 15x on green.
func SettleRoulette(pick games.Color, result games.Pocket, bet int) Settlement {
	if pick != result.Color {
		return Settlement{Delta: -bet, Label: "Lost"}
	}
	if pick == games.Green {
		return Settlement{Delta: bet*15 - bet, Label: "Green! (x15)"}
	}
	return Settlement{Delta: bet*2 - bet, Label: "Won (x2)"}
}

// Forfeit is the settlement of a session abandoned until it expired.
func Forfeit(bet int) Settlement {
	return Settlement{Delta: -bet, Label: "Expired (bet forfeited)"}
}
