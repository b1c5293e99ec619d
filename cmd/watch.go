package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/etnz/ratefeed"
	"github.com/google/subcommands"
)

type watchCmd struct {
	chinamoneyAt string
	sgeAt        string
	tz           string
	every        time.Duration
	atStartup    bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "runs the acquisition scheduler until interrupted" }
func (*watchCmd) Usage() string {
	return `rfd watch [-chinamoney-at HH:MM] [-sge-at HH:MM] [-tz zone] [-every d] [-at-startup]

Drives one independent sync loop per source. By default each source syncs
once per day at its publication time in the configured timezone; -every
switches both loops to a fixed interval instead. A slow cycle on one source
never delays the other, and the next fire time is always computed from the
scheduled time, so execution time does not accumulate drift.

With -at-startup each source syncs immediately once, regardless of schedule.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chinamoneyAt, "chinamoney-at", "09:30", "Daily sync time for the exchange rate feed")
	f.StringVar(&c.sgeAt, "sge-at", "16:00", "Daily sync time for the gold quotation page")
	f.StringVar(&c.tz, "tz", "Asia/Shanghai", "Timezone of the daily sync times")
	f.DurationVar(&c.every, "every", 0, "Sync on a fixed interval instead of daily times")
	f.BoolVar(&c.atStartup, "at-startup", false, "Run one sync per source immediately at startup")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cadences, err := c.cadences()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for name, cadence := range cadences {
		cadence := cadence // per-iteration copy; required while go.mod targets go < 1.22
		src, store, err := openSource(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			cadence.Run(ctx, src.Name(), c.atStartup, func(ctx context.Context) {
				outcome := ratefeed.Sync(ctx, store, src)
				fmt.Printf("%s: %s\n", src.Name(), outcome)
			})
		}()
	}
	wg.Wait()
	return subcommands.ExitSuccess
}

// cadences maps each source to its schedule from the flags. ErrConfig here
// is fatal: it is reported before any loop starts.
func (c *watchCmd) cadences() (map[string]ratefeed.Cadence, error) {
	if c.every > 0 {
		return map[string]ratefeed.Cadence{
			"chinamoney": ratefeed.Every(c.every),
			"sge":        ratefeed.Every(c.every),
		}, nil
	}
	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ratefeed.ErrConfig, c.tz, err)
	}
	out := make(map[string]ratefeed.Cadence, 2)
	for name, at := range map[string]string{"chinamoney": c.chinamoneyAt, "sge": c.sgeAt} {
		hh, mm, err := parseAt(at)
		if err != nil {
			return nil, err
		}
		out[name] = ratefeed.Daily(hh, mm, loc)
	}
	return out, nil
}
