// Package report composes the daily market report from the latest store
// values. It only consumes the store's lookup output and a file path; it
// never triggers an acquisition.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
)

// Line is one reported series.
type Line struct {
	Series string
	// Suffix completes the displayed label, e.g. "/CNY" for a currency pair
	// quoted against the yuan.
	Suffix string
	Value  decimal.Decimal
	Found  bool
	// Money formats the value as a CNY amount instead of a bare rate.
	Money bool
}

// Label is the displayed name of the line's series.
func (l Line) Label() string { return l.Series + l.Suffix }

// Data is everything a report needs.
type Data struct {
	Title string
	Date  string // the as-of date shown in the report
	Lines []Line
	// Attachment is the store file delivered with the report, shown by name.
	Attachment string
}

// Markdown renders the report as a markdown document.
func Markdown(d Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	fmt.Fprintf(&b, "Latest recorded values as of %s:\n\n", d.Date)
	for _, l := range d.Lines {
		if !l.Found {
			fmt.Fprintf(&b, "- %s: value not found\n", l.Label())
			continue
		}
		if l.Money {
			fmt.Fprintf(&b, "- %s: **%s**\n", l.Label(), CNY(l.Value))
		} else {
			fmt.Fprintf(&b, "- %s: **%s**\n", l.Label(), l.Value.String())
		}
	}
	b.WriteString("\nValues are the most recent rows of the local stores.\n")
	if d.Attachment != "" {
		fmt.Fprintf(&b, "The full data set is available in the attached file `%s`.\n", d.Attachment)
	}
	return b.String()
}

// HTML renders the report as an HTML document suitable for an email body.
func HTML(d Data) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(d)), &buf); err != nil {
		return "", fmt.Errorf("rendering report to HTML: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders the report for an ANSI terminal.
func Terminal(d Data) (string, error) {
	return glamour.Render(Markdown(d), "auto")
}

// CNY formats a decimal amount of yuan with the currency's symbol and
// grouping.
func CNY(v decimal.Decimal) string {
	cur := *money.New(0, money.CNY).Currency()
	return cur.Formatter().Format(v.Shift(int32(cur.Fraction)).IntPart())
}
