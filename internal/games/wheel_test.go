package games

import (
	"math/rand/v2"
	"testing"
)

func TestPocketColor(t *testing.T) {
	if PocketColor(0) != Green {
		t.Error("0 should be green")
	}
	reds, blacks := 0, 0
	for n := 1; n <= 36; n++ {
		switch PocketColor(n) {
		case Red:
			reds++
		case Black:
			blacks++
		default:
			t.Errorf("%d has no color", n)
		}
	}
	if reds != 18 || blacks != 18 {
		t.Errorf("expected 18 red and 18 black, got %d and %d", reds, blacks)
	}
}

func TestSpinWheelRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	for n := 0; n < 2000; n++ {
		p := SpinWheel(rng)
		if p.Number < 0 || p.Number > 36 {
			t.Fatalf("pocket %d out of range", p.Number)
		}
		if p.Color != PocketColor(p.Number) {
			t.Fatalf("pocket %d colored %s", p.Number, p.Color)
		}
	}
}

func TestSpinReelsWeights(t *testing.T) {
	if got := spinReel(fixedRand{}); got.Face != "🎰" {
		t.Errorf("top of the weight range should land on the jackpot, got %s", got.Face)
	}
	rng := rand.New(rand.NewPCG(10, 12))
	faces := make(map[string]bool)
	for n := 0; n < 5000; n++ {
		for _, s := range SpinReels(rng) {
			faces[s.Face] = true
		}
	}
	if len(faces) != len(Reel) {
		t.Errorf("expected every symbol to appear, saw %d of %d", len(faces), len(Reel))
	}
}
