package services

import (
	"context"
	"log"
	"time"
)

// Sweeper drops idle state older than its TTL and reports how much it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// StartScheduler runs the periodic maintenance tasks until ctx is done:
// elapsed course sessions are marked completed and every sweeper runs.
func StartScheduler(ctx context.Context, interval time.Duration, sweepers ...Sweeper) {
	log.Println("Starting task scheduler...")
	go runScheduler(ctx, interval, sweepers)
}

func runScheduler(ctx context.Context, interval time.Duration, sweepers []Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Task scheduler stopped")
			return
		case now := <-ticker.C:
			runScheduledTasks(ctx, now.UTC(), sweepers)
		}
	}
}

func runScheduledTasks(ctx context.Context, now time.Time, sweepers []Sweeper) {
	if n, err := CompleteElapsedSessions(ctx, now); err != nil {
		log.Printf("Error completing elapsed sessions: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d elapsed sessions completed", n)
	}

	for _, s := range sweepers {
		if n := s.Sweep(now); n > 0 {
			log.Printf("Swept %d idle sessions", n)
		}
	}
}
