package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/daybook/internal/clock"
)

// Trigger starts a detached finalization and reports its completion.
type Trigger interface {
	FinalizeScheduled(ctx context.Context) <-chan struct{}
}

// Schedule says when scheduled finalization fires. Every takes precedence over At.
type Schedule struct {
	Every time.Duration `yaml:"every"`
	At    string        `yaml:"at"` // HH:MM, daily
}

// Enabled reports whether anything is scheduled.
func (s Schedule) Enabled() bool {
	return s.Every > 0 || s.At != ""
}

// Scheduler fires a Trigger on a Schedule until its context ends.
type Scheduler struct {
	trigger  Trigger
	sched    Schedule
	hour     int
	minute   int
	location *time.Location
	clock    clock.Clock
	logger   *slog.Logger
}

// NewScheduler validates sched and creates a scheduler. clk tells it the time
// when computing the next daily run; nil means the system clock.
func NewScheduler(t Trigger, sched Schedule, loc *time.Location, clk clock.Clock, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{trigger: t, sched: sched, location: loc, clock: clk, logger: logger}
	if sched.Every <= 0 && sched.At != "" {
		h, m, err := ParseAt(sched.At)
		if err != nil {
			return nil, err
		}
		s.hour, s.minute = h, m
	}
	return s, nil
}

// Run blocks until ctx is done, firing the trigger at each scheduled time. It
// waits for the last started run before returning.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.sched.Enabled() {
		return
	}
	s.logger.Info("scheduler started", "every", s.sched.Every, "at", s.sched.At, "tz", s.location.String())

	var last <-chan struct{}
	for {
		timer := time.NewTimer(s.wait())
		select {
		case <-ctx.Done():
			timer.Stop()
			if last != nil {
				<-last
			}
			return
		case <-timer.C:
			s.logger.Debug("scheduled finalize firing")
			last = s.trigger.FinalizeScheduled(ctx)
		}
	}
}

func (s *Scheduler) wait() time.Duration {
	return s.next(s.clock.Now())
}

func (s *Scheduler) next(now time.Time) time.Duration {
	if s.sched.Every > 0 {
		return s.sched.Every
	}
	return NextAt(now, s.hour, s.minute, s.location).Sub(now)
}

// NextAt returns the first hour:minute in loc strictly after now.
func NextAt(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !t.After(local) {
		t = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return t
}

// ParseAt parses a 24-hour "HH:MM" time of day.
func ParseAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule time must be HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
