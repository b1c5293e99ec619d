// Package mail delivers a composed report by SMTP, optionally with the
// store file attached.
package mail

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"time"
)

// Message is one outbound mail.
type Message struct {
	From     string // sender address
	FromName string // sender display name
	To       []string
	Subject  string
	HTMLBody string
	// Attachment is the path of a file to attach; empty for none. A missing
	// file is not an error: the message is sent without it.
	Attachment string
}

// Sender holds the SMTP endpoint and credentials. Delivery uses implicit
// TLS, the common setup on port 465.
type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Send encodes and delivers the message.
func (s *Sender) Send(msg Message) error {
	payload, err := encode(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
		return fmt.Errorf("smtp auth for %s: %w", s.Username, err)
	}
	if err := c.Mail(msg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("recipient %s rejected: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// encode builds the MIME payload: headers, an HTML body part, and a base64
// attachment part when the file exists.
func encode(msg Message) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	var buf bytes.Buffer
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", join(msg.To))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, err
	}

	if msg.Attachment != "" {
		if err := attach(mw, msg.Attachment); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

// attach adds one base64-encoded file part. A file that cannot be read is
// skipped rather than failing the whole message.
func attach(mw *multipart.Writer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	name := filepath.Base(path)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream; name=" + fmt.Sprintf("%q", name)},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
	})
	if err != nil {
		return err
	}
	enc := base64.NewEncoder(base64.StdEncoding, part)
	if _, err := enc.Write(content); err != nil {
		return err
	}
	return enc.Close()
}

func join(addrs []string) string {
	var b bytes.Buffer
	for i, a := range addrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a)
	}
	return b.String()
}
