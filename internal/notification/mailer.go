package notification

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// Message is an HTML e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers notification e-mails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay. The connection is upgraded with
// STARTTLS whenever the relay offers it.
type SMTPMailer struct {
	config   SMTPConfig
	auth     smtp.Auth
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPMailer creates an SMTPMailer. PLAIN auth is only used when a username is set.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &SMTPMailer{
		config:   config,
		auth:     auth,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
}

// Send delivers msg. net/smtp has no context support, so ctx is only checked
// before the relay is contacted.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	if err := m.sendMail(addr, m.auth, m.config.From, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg Message) []byte {
	var buf bytes.Buffer
	headers := [][2]string{
		{"From", m.config.From},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", m.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}

// LogMailer only logs the mails it is given. It is used when no relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the recipient and subject.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("mail delivery disabled, message logged only",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
