// Package sge acquires daily precious-metal quotations from the Shanghai
// Gold Exchange.
//
// The exchange publishes an HTML page with one quotation table per day. The
// markup has changed more than once, so extraction runs the full fallback
// chain: a table located by candidate class names, then a document-wide text
// search for the product label.
package sge

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/etnz/ratefeed"
)

// DefaultURL is the daily quotation page of the exchange.
const DefaultURL = "https://www.sge.com.cn/sjzx/quotation_daily_new"

// tableClasses are the candidate class names the quotation table has been
// published under, in priority order.
var tableClasses = []string{"table", "data-list", "data-table", "list"}

// The closing price is the second cell of a product row; some revisions of
// the page leave it empty and carry the price in the fourth cell instead.
const (
	priceCol    = 1
	altPriceCol = 3
)

// Source syncs daily quotations for a set of product labels.
type Source struct {
	URL    string
	Client *http.Client
	// Now is the clock used to derive the trading day; overridable in tests.
	Now func() time.Time

	series    []string
	extractor *ratefeed.Extractor
	loc       *time.Location
}

// New returns a Source extracting the given product labels, matched
// case-insensitively against the first cell of each table row. Without
// arguments it extracts Au99.99.
func New(series ...string) *Source {
	if len(series) == 0 {
		series = []string{"Au99.99"}
	}
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Source{
		URL:    DefaultURL,
		Client: ratefeed.Client(10 * time.Second),
		Now:    time.Now,
		series: series,
		extractor: ratefeed.NewExtractor(
			ratefeed.TableByClass(tableClasses, priceCol, altPriceCol),
			ratefeed.TextSearch(priceCol, altPriceCol),
		),
		loc: loc,
	}
}

func (s *Source) Name() string                   { return "sge" }
func (s *Source) Series() []string               { return s.series }
func (s *Source) Extractor() *ratefeed.Extractor { return s.extractor }

// LatestKey is the current trading day in the exchange's timezone: the page
// republishes under the current date and offers no metadata endpoint, so a
// store already carrying today's date is current.
func (s *Source) LatestKey(ctx context.Context) (string, error) {
	return s.today(), nil
}

// Fetch downloads the quotation page for the current trading day.
func (s *Source) Fetch(ctx context.Context) (*ratefeed.Response, error) {
	day := s.today()
	params := url.Values{}
	params.Set("start_date", day)
	params.Set("end_date", day)

	header := http.Header{}
	header.Set("Referer", DefaultURL)

	body, err := ratefeed.Get(ctx, s.Client, s.URL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}
	return &ratefeed.Response{Body: body, Key: day}, nil
}

func (s *Source) today() string {
	return s.Now().In(s.loc).Format("2006-01-02")
}
