// Package chinamoney acquires the central parity exchange rates published
// daily by the China Foreign Exchange Trade System at chinamoney.com.cn.
//
// The feed is a single JSON document: a "data.lastDate" freshness key plus a
// "records" list of rate entries, each with a verbose series name
// ("vrtEName", e.g. "USD/CNY") and a "price".
package chinamoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/ratefeed"
)

// DefaultURL is the public location of the central parity rates feed.
const DefaultURL = "https://www.chinamoney.com.cn/r/cms/www/chinamoney/data/fx/ccpr.json"

// Source syncs central parity rates for a set of currency codes.
type Source struct {
	URL    string
	Client *http.Client

	series    []string
	extractor *ratefeed.Extractor

	// payload downloaded by LatestKey, consumed by Fetch within the same
	// cycle so one cycle costs one request.
	cached *ratefeed.Response
}

// New returns a Source extracting the given currency codes. Codes are
// substring-matched against the feed's verbose series names, so "USD"
// resolves the "USD/CNY" entry. Without arguments it extracts USD and EUR.
func New(series ...string) *Source {
	if len(series) == 0 {
		series = []string{"USD", "EUR"}
	}
	return &Source{
		URL:       DefaultURL,
		Client:    ratefeed.Client(10 * time.Second),
		series:    series,
		extractor: ratefeed.NewExtractor(ratefeed.JSONRecords("$.records", "vrtEName", "price")),
	}
}

func (s *Source) Name() string                   { return "chinamoney" }
func (s *Source) Series() []string               { return s.series }
func (s *Source) Extractor() *ratefeed.Extractor { return s.extractor }

// LatestKey downloads the feed and returns its lastDate. There is no
// lighter metadata endpoint, so the payload is kept for Fetch. Any payload
// left over from an earlier cycle is discarded first: a cycle must never
// serve data downloaded by a previous one.
func (s *Source) LatestKey(ctx context.Context) (string, error) {
	s.cached = nil
	resp, err := s.download(ctx)
	if err != nil {
		return "", err
	}
	s.cached = resp
	return resp.Key, nil
}

// Fetch returns the payload downloaded by LatestKey when one is pending,
// otherwise downloads a fresh one.
func (s *Source) Fetch(ctx context.Context) (*ratefeed.Response, error) {
	if r := s.cached; r != nil {
		s.cached = nil
		return r, nil
	}
	return s.download(ctx)
}

func (s *Source) download(ctx context.Context) (*ratefeed.Response, error) {
	body, err := ratefeed.Get(ctx, s.Client, s.URL, nil)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, fmt.Errorf("decoding chinamoney feed: %w", err)
	}
	jval, err := jsonpath.Get("$.data.lastDate", jobj)
	if err != nil {
		return nil, fmt.Errorf("chinamoney feed has no lastDate: %w", err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	key, ok := jval.(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("chinamoney feed lastDate is not a date: %v", jval)
	}
	return &ratefeed.Response{Body: body, Key: key}, nil
}
