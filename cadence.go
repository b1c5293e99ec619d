package ratefeed

import (
	"context"
	"log"
	"time"
)

// Cadence is a recurring wall-clock schedule: either once per day at a fixed
// time in a timezone, or every fixed interval.
type Cadence struct {
	hour, minute int
	loc          *time.Location
	every        time.Duration
}

// Daily returns a cadence firing once per day at hh:mm in loc.
func Daily(hh, mm int, loc *time.Location) Cadence {
	if loc == nil {
		loc = time.Local
	}
	return Cadence{hour: hh, minute: mm, loc: loc}
}

// Every returns a cadence firing at a fixed interval.
func Every(d time.Duration) Cadence { return Cadence{every: d} }

// Next returns the first fire time strictly after the given instant. For a
// daily cadence an anchor time already passed today rolls forward to
// tomorrow; it never fires immediately.
func (c Cadence) Next(after time.Time) time.Time {
	if c.every > 0 {
		return after.Add(c.every)
	}
	t := after.In(c.loc)
	fire := time.Date(t.Year(), t.Month(), t.Day(), c.hour, c.minute, 0, 0, c.loc)
	if !fire.After(after) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// Task is the unit of work a cadence drives, one invocation per fire.
type Task func(ctx context.Context)

// Run drives task on the cadence until ctx is done. When immediate is set
// the task runs once before entering the schedule, regardless of the next
// fire time.
//
// After each fire the next one is recomputed from the scheduled time, not
// from the completion time, so a slow task never shifts the schedule: a
// 5-minute cadence anchored at 23:13:00 fires next at 23:18:00 even when the
// 23:13 run takes 40 seconds.
//
// Each Run call holds its own next-fire state; independent sources run their
// own Run loops and never delay each other.
func (c Cadence) Run(ctx context.Context, name string, immediate bool, task Task) {
	if immediate {
		log.Printf("%s: startup run", name)
		task(ctx)
	}
	next := c.Next(time.Now())
	for {
		log.Printf("%s: next run at %s", name, next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		task(ctx)
		next = c.Next(next)
	}
}
