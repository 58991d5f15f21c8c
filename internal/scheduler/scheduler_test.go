package scheduler

import (
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	before time.Time
	err    error
}

func (f *fakePruner) PruneRounds(before time.Time) (int64, error) {
	f.before = before
	return 3, f.err
}

type fakeSessions int

func (f fakeSessions) ActiveGames() int { return int(f) }

func TestPruneUsesRetention(t *testing.T) {
	now := time.Unix(1700000000, 0)
	p := &fakePruner{}
	j := &Jobs{DB: p, Sessions: fakeSessions(0), Retention: 30 * 24 * time.Hour, Now: func() time.Time { return now }}

	if err := j.Prune(); err != nil {
		t.Fatal(err)
	}
	if want := now.Add(-30 * 24 * time.Hour); !p.before.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, p.before)
	}
}

func TestPruneError(t *testing.T) {
	p := &fakePruner{err: errors.New("locked")}
	j := &Jobs{DB: p, Sessions: fakeSessions(0), Retention: time.Hour}
	if err := j.Prune(); err == nil {
		t.Error("expected error")
	}
}

func TestStartRegistersJobs(t *testing.T) {
	j := &Jobs{DB: &fakePruner{}, Sessions: fakeSessions(2), Retention: time.Hour}
	c, err := Start(j)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	if n := len(c.Entries()); n != 2 {
		t.Errorf("expected 2 jobs, got %d", n)
	}
}
