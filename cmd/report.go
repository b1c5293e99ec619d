package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	rfdmail "github.com/etnz/ratefeed/mail"
	"github.com/etnz/ratefeed/report"
	"github.com/google/subcommands"
)

const smtpAuthEnv = "RFD_SMTP_AUTH"

type reportCmd struct {
	send    bool
	preview bool

	smtpHost string
	smtpPort int
	from     string
	fromName string
	to       string
	auth     string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "composes the daily market report" }
func (*reportCmd) Usage() string {
	return `rfd report [-preview] [-send -to addr[,addr...]]

Composes a markdown report from the latest recorded exchange rates and gold
price. By default the markdown is printed to stdout; -preview renders it for
the terminal instead. With -send the report is rendered to HTML and mailed,
with the exchange rate store attached.

The SMTP password is taken from the -smtp-auth flag, or from the ` + smtpAuthEnv + `
environment variable when the flag is not set.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.send, "send", false, "Send the report by email")
	f.BoolVar(&c.preview, "preview", false, "Render the report for the terminal")
	f.StringVar(&c.smtpHost, "smtp-host", "smtp.qq.com", "SMTP server host")
	f.IntVar(&c.smtpPort, "smtp-port", 465, "SMTP server port (implicit TLS)")
	f.StringVar(&c.from, "from", "", "Sender address")
	f.StringVar(&c.fromName, "from-name", "", "Sender display name")
	f.StringVar(&c.to, "to", "", "Comma-separated recipient addresses")
	f.StringVar(&c.auth, "smtp-auth", "", "SMTP password or authorization code")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	data, err := c.compose()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.send {
		return c.mail(data)
	}
	if c.preview {
		out, err := report.Terminal(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(out)
		return subcommands.ExitSuccess
	}
	fmt.Print(report.Markdown(data))
	return subcommands.ExitSuccess
}

// compose gathers the latest values of every configured series from both
// stores.
func (c *reportCmd) compose() (report.Data, error) {
	data := report.Data{
		Title: "Daily Market Report",
		Date:  time.Now().Format("2006-01-02"),
	}

	for _, name := range sourceNames {
		src, store, err := openSource(name)
		if err != nil {
			return data, err
		}
		values, err := store.LookupLatest(src.Series()...)
		if err != nil {
			return data, fmt.Errorf("reading store for %s: %w", name, err)
		}
		for _, series := range src.Series() {
			v, ok := values[series]
			line := report.Line{Series: series, Value: v, Found: ok}
			if name == "sge" {
				line.Money = true // gold quotations are CNY amounts
			} else {
				line.Suffix = "/CNY" // exchange rates are pairs against the yuan
			}
			data.Lines = append(data.Lines, line)
		}
		if name == "chinamoney" {
			data.Attachment = store.Path()
		}
	}
	return data, nil
}

func (c *reportCmd) mail(data report.Data) subcommands.ExitStatus {
	if c.auth == "" {
		c.auth = os.Getenv(smtpAuthEnv)
	}
	if c.from == "" || c.to == "" || c.auth == "" {
		fmt.Fprintln(os.Stderr, "Error: -send requires -from, -to and an SMTP password (-smtp-auth or "+smtpAuthEnv+")")
		return subcommands.ExitUsageError
	}

	body, err := report.HTML(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	sender := &rfdmail.Sender{
		Host:     c.smtpHost,
		Port:     c.smtpPort,
		Username: c.from,
		Password: c.auth,
	}
	msg := rfdmail.Message{
		From:       c.from,
		FromName:   c.fromName,
		To:         splitList(c.to),
		Subject:    fmt.Sprintf("%s - %s", data.Title, data.Date),
		HTMLBody:   body,
		Attachment: data.Attachment,
	}
	if err := sender.Send(msg); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Report sent to %s\n", strings.Join(msg.To, ", "))
	return subcommands.ExitSuccess
}
