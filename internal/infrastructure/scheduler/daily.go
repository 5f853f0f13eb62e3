package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vigiamx/mediawatch/internal/ports"
)

// Daily triggers the job once per day at a fixed local time.
type Daily struct {
	at     string
	loc    *time.Location
	mu     sync.Mutex
	stop   chan struct{}
	logger *slog.Logger
}

var _ ports.Scheduler = (*Daily)(nil)

// NewDaily builds a scheduler firing at "HH:MM" in the given location.
func NewDaily(at string, loc *time.Location, logger *slog.Logger) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{at: at, loc: loc, logger: logger}
}

// Start launches the trigger goroutine. Calling Start twice is a no-op.
func (d *Daily) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	hour, minute, err := parseClock(d.at)
	if err != nil {
		return fmt.Errorf("daily scheduler: %w", err)
	}

	stop := make(chan struct{})
	d.stop = stop
	go func() {
		for {
			next := nextRun(time.Now(), hour, minute, d.loc)
			if d.logger != nil {
				d.logger.Info("next batch run scheduled", "at", next.Format(time.RFC3339))
			}

			timer := time.NewTimer(time.Until(next))
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the trigger goroutine.
func (d *Daily) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

func parseClock(value string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM): %w", value, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// nextRun returns the next occurrence of hour:minute in loc strictly after
// now.
func nextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
