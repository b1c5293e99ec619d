package ratefeed

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// Response is the raw payload returned by one source fetch. It only lives
// for the duration of a single sync cycle.
type Response struct {
	Body []byte
	Key  string // the freshness key the source advertised for this payload
}

// Quote is one extracted (series, value) pair.
type Quote struct {
	Series string
	Value  decimal.Decimal
}

// ExtractionResult is the normalized outcome of extracting one Response.
type ExtractionResult struct {
	Key    string
	Quotes []Quote
}

// Empty reports whether extraction yielded no usable quote at all.
func (r ExtractionResult) Empty() bool { return len(r.Quotes) == 0 }

// Strategy is one way of locating the raw textual value of a series inside a
// payload. Strategies are pure: they either find text or report failure, and
// never parse numbers themselves.
type Strategy func(resp *Response, series string) (string, bool)

// Extractor tries an ordered list of strategies and stops at the first one
// that yields a value that survives numeric sanitization.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor returns an Extractor trying the given strategies in order.
func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract resolves each requested series against the response. For each
// series the strategies run in order; the first raw value that parses wins.
// A series no strategy can resolve is simply absent from the result, it is
// never defaulted to zero.
func (e *Extractor) Extract(resp *Response, series []string) ExtractionResult {
	res := ExtractionResult{Key: resp.Key}
	for _, s := range series {
		for _, strategy := range e.strategies {
			raw, ok := strategy(resp, s)
			if !ok {
				continue
			}
			value, err := ParseValue(raw)
			if err != nil {
				log.Printf("extract %q: discarding unparsable value %q: %v", s, raw, err)
				continue
			}
			res.Quotes = append(res.Quotes, Quote{Series: s, Value: value})
			break
		}
	}
	return res
}

// matchSeries reports whether a source label designates the requested
// series. Labels are verbose ("US Dollar", "USD/CNY"), so matching is a
// case-insensitive substring test ignoring spaces: "USD" matches "US Dollar"
// and "EUR" matches "Euro". Overlapping labels are resolved by scan order:
// the first matching row wins.
func matchSeries(label, series string) bool {
	return strings.Contains(normLabel(label), normLabel(series))
}

func normLabel(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// Sanitize strips every rune outside [0-9.] from a raw extracted value.
// Sources decorate numbers with currency signs, thousands separators and
// padding; "¥ 7,123.45 " sanitizes to "7123.45".
func Sanitize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseValue sanitizes raw text and parses it as a decimal. Text that
// sanitizes to an empty or unparsable string is an error, not a zero.
func ParseValue(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(Sanitize(raw))
}
