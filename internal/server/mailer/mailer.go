// Package mailer delivers password-reset e-mails.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/logging"
)

var ErrBadAddress = errors.New("invalid e-mail address")

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Message is a rendered e-mail.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// PasswordResetMessage renders the reset e-mail.
func PasswordResetMessage(from, to, resetURL string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Reset your " + common.AppName + " password",
		Text: "Click the link below to reset your password. This link expires in 1 hour.\n\n" +
			resetURL +
			"\n\nIf you did not request a password reset, you can safely ignore this email.",
		HTML: `<p>Click the link below to reset your password. This link expires in 1 hour.</p>` +
			`<p><a href="` + resetURL + `">` + resetURL + `</a></p>` +
			`<p>If you did not request a password reset, you can safely ignore this email.</p>`,
	}
}

// Bytes renders m as a multipart/alternative RFC 5322 message.
func (m Message) Bytes() ([]byte, error) {
	for _, h := range []string{m.From, m.To, m.Subject} {
		if strings.ContainsAny(h, "\r\n") {
			return nil, ErrBadAddress
		}
	}

	const boundary = "fintracker-alt-boundary"
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, m.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, m.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends through an SMTP relay. Port 465 uses implicit TLS, other
// ports use STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(cfg SMTPConfig, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: sendSMTP}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg, err := PasswordResetMessage(m.cfg.From, to, resetURL).Bytes()
	if err != nil {
		return err
	}
	return m.send(m.cfg, m.cfg.From, []string{to}, msg)
}

func sendSMTP(cfg SMTPConfig, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	if cfg.Port != 465 {
		return smtp.SendMail(addr, auth, from, to, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// LogMailer writes the reset link to the log instead of sending it. It is
// only wired outside production.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	m.log.Info(ctx, "password reset e-mail", "to", to, "url", resetURL)
	return nil
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (r *Recorder) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, PasswordResetMessage("", to, resetURL))
	return nil
}

func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}
