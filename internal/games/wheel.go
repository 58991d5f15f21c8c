package games

// Symbol is a slot reel symbol with its three-of-a-kind payout multiplier.
type Symbol struct {
	Face   string
	Payout int
	weight int
}

var Reel = []Symbol{
	{Face: "🍒", Payout: 3, weight: 20},
	{Face: "🍋", Payout: 3, weight: 20},
	{Face: "🍊", Payout: 3, weight: 18},
	{Face: "🍉", Payout: 3, weight: 17},
	{Face: "🔔", Payout: 5, weight: 10},
	{Face: "⭐", Payout: 5, weight: 8},
	{Face: "💎", Payout: 10, weight: 5},
	{Face: "🎰", Payout: 15, weight: 2},
}

var reelWeight = func() int {
	total := 0
	for _, s := range Reel {
		total += s.weight
	}
	return total
}()

func spinReel(rng Rand) Symbol {
	n := rng.IntN(reelWeight)
	for _, s := range Reel {
		if n < s.weight {
			return s
		}
		n -= s.weight
	}
	return Reel[len(Reel)-1]
}

// SpinReels spins three independent weighted reels.
func SpinReels(rng Rand) [3]Symbol {
	if rng == nil {
		rng = DefaultRand
	}
	return [3]Symbol{spinReel(rng), spinReel(rng), spinReel(rng)}
}

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

func (c Color) Valid() bool {
	return c == Red || c == Black || c == Green
}

func (c Color) Emoji() string {
	switch c {
	case Red:
		return "🟥"
	case Black:
		return "⬛"
	default:
		return "🟩"
	}
}

var redNumbers = map[int]struct{}{1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {}, 19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {}}

// Pocket is where the roulette ball landed.
type Pocket struct {
	Number int
	Color  Color
}

// PocketColor maps a wheel number (0-36) to its color.
func PocketColor(n int) Color {
	if n == 0 {
		return Green
	}
	if _, ok := redNumbers[n]; ok {
		return Red
	}
	return Black
}

// SpinWheel spins a single-zero wheel.
func SpinWheel(rng Rand) Pocket {
	if rng == nil {
		rng = DefaultRand
	}
	n := rng.IntN(37)
	return Pocket{Number: n, Color: PocketColor(n)}
}
