package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Pruner interface {
	PruneRounds(before time.Time) (int64, error)
}

type SessionCounter interface {
	ActiveGames() int
}

// Jobs is the set of background jobs the bot runs.
type Jobs struct {
	DB        Pruner
	Sessions  SessionCounter
	Retention time.Duration
	Now       func() time.Time
}

// Prune deletes ledger rows older than the retention window.
func (j *Jobs) Prune() error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	n, err := j.DB.PruneRounds(now().Add(-j.Retention))
	if err != nil {
		return fmt.Errorf("prune rounds: %w", err)
	}
	log.Printf("[SCHEDULER] Pruned %d ledger rows older than %s", n, j.Retention)
	return nil
}

// ReportSessions logs how many games are waiting on their players.
func (j *Jobs) ReportSessions() {
	if n := j.Sessions.ActiveGames(); n > 0 {
		log.Printf("[SCHEDULER] %d game(s) in progress", n)
	}
}

// Start registers the jobs on a seconds-resolution cron and starts it.
// Stop the returned cron on shutdown.
func Start(j *Jobs) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	// Every day at 04:00.
	if _, err := c.AddFunc("0 0 4 * * *", func() {
		if err := j.Prune(); err != nil {
			log.Printf("[SCHEDULER ERROR] %v", err)
		}
	}); err != nil {
		return nil, err
	}

	// Every 5 minutes.
	if _, err := c.AddFunc("0 */5 * * * *", j.ReportSessions); err != nil {
		return nil, err
	}

	c.Start()
	log.Println("Scheduler started.")
	return c, nil
}
