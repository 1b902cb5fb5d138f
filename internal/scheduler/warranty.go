package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Disabled turns the sweep off when used as the cron spec.
const Disabled = "off"

// sweepTimeout bounds a single run so a stuck database cannot pile up runs.
const sweepTimeout = 5 * time.Minute

type WarrantySweeper interface {
	SweepExpired(ctx context.Context, today time.Time) (int, error)
}

// StartWarrantySweep schedules the warranty expiry sweep on spec and starts the
// cron runner. It returns nil when spec is Disabled.
func StartWarrantySweep(spec string, sweeper WarrantySweeper) (*cron.Cron, error) {
	if spec == Disabled {
		log.Println("[WARRANTY-SCHEDULER] Warranty sweep disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { RunWarrantySweep(sweeper, time.Now) }); err != nil {
		return nil, fmt.Errorf("invalid warranty sweep schedule %q: %w", spec, err)
	}
	c.Start()
	log.Printf("[WARRANTY-SCHEDULER] Warranty sweep scheduled (%s)", spec)
	return c, nil
}

// RunWarrantySweep performs one sweep and logs the outcome.
func RunWarrantySweep(sweeper WarrantySweeper, now func() time.Time) int {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := sweeper.SweepExpired(ctx, now())
	if err != nil {
		log.Printf("[WARRANTY-SCHEDULER] Error expiring warranties: %v", err)
		return 0
	}
	log.Printf("[WARRANTY-SCHEDULER] Expired %d warranties", count)
	return count
}
