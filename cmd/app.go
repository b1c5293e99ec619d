package cmd

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/ratefeed"
	"github.com/etnz/ratefeed/chinamoney"
	"github.com/etnz/ratefeed/sge"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var storeDir = flag.String("store-dir", ".", "Directory holding the tabular store files")
var fetchTimeout = flag.Duration("fetch-timeout", 10*time.Second, "Timeout for one source fetch")
var currencies = flag.String("currencies", "USD,EUR", "Comma-separated currency codes to extract from the exchange rate feed")
var products = flag.String("products", "Au99.99", "Comma-separated product labels to extract from the gold quotation page")

// store file names, one store per data series family.
const (
	exchangeStoreFile = "exchange_rate.csv"
	goldStoreFile     = "gold_price.csv"
)

// sourceNames in the order sync runs them by default.
var sourceNames = []string{"chinamoney", "sge"}

// openSource returns the configured Source and its Store for a source name.
func openSource(name string) (ratefeed.Source, *ratefeed.Store, error) {
	switch name {
	case "chinamoney":
		src := chinamoney.New(splitList(*currencies)...)
		src.Client = ratefeed.Client(*fetchTimeout)
		return src, ratefeed.NewStore(filepath.Join(*storeDir, exchangeStoreFile)), nil
	case "sge":
		src := sge.New(splitList(*products)...)
		src.Client = ratefeed.Client(*fetchTimeout)
		return src, ratefeed.NewStore(filepath.Join(*storeDir, goldStoreFile)), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown source %q (supported: %s)",
			ratefeed.ErrConfig, name, strings.Join(sourceNames, ", "))
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseAt parses a daily anchor "HH:MM".
func parseAt(s string) (hh, mm int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: invalid time of day %q, want HH:MM", ratefeed.ErrConfig, s)
	}
	hh, err = strconv.Atoi(parts[0])
	if err == nil {
		mm, err = strconv.Atoi(parts[1])
	}
	if err != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("%w: invalid time of day %q, want HH:MM", ratefeed.ErrConfig, s)
	}
	return hh, mm, nil
}
