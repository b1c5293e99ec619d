package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type latestCmd struct {
	source string
}

func (*latestCmd) Name() string     { return "latest" }
func (*latestCmd) Synopsis() string { return "prints the latest recorded value per series" }
func (*latestCmd) Usage() string {
	return `rfd latest [-source name] [series...]

Reads the source's store backward from its most recent row and prints the
first value found for each requested series (substring match on the row
label). Without arguments it prints the source's configured series. This is
a pure read: it never triggers a sync.
`
}

func (c *latestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "chinamoney", "Source whose store to read")
}

func (c *latestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	src, store, err := openSource(c.source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	series := f.Args()
	if len(series) == 0 {
		series = src.Series()
	}
	values, err := store.LookupLatest(series...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading store: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range series {
		if v, ok := values[name]; ok {
			fmt.Printf("%s\t%s\n", name, v)
		} else {
			fmt.Printf("%s\tnot found\n", name)
		}
	}
	return subcommands.ExitSuccess
}
