package status

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeStats struct {
	rounds, net int
	err         error
}

func (f fakeStats) RoundStats(since time.Time) (int, int, error) { return f.rounds, f.net, f.err }

type fakeSessions int

func (f fakeSessions) ActiveGames() int { return int(f) }

func TestHealth(t *testing.T) {
	srv := NewServer(":0", fakeStats{}, fakeSessions(0))
	resp, err := srv.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	srv := NewServer(":0", fakeStats{rounds: 12, net: 340}, fakeSessions(3))
	resp, err := srv.app.Test(httptest.NewRequest("GET", "/stats", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["active_games"] != 3 || body["rounds_24h"] != 12 || body["house_net_24h"] != 340 {
		t.Errorf("unexpected stats %v", body)
	}
}

func TestStatsError(t *testing.T) {
	srv := NewServer(":0", fakeStats{err: errors.New("locked")}, fakeSessions(0))
	resp, err := srv.app.Test(httptest.NewRequest("GET", "/stats", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}
