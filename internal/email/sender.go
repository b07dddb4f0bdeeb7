// Package email sends transactional mail over SMTP. Port 465 gets implicit
// TLS, every other port a STARTTLS upgrade.
package email

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"mime"
	"net"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/config"
)

const dialTimeout = 10 * time.Second

type Sender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	host       string
	port       int
	from       string
	senderName string
	auth       smtp.Auth
}

// NewSender returns an SMTP sender, or a log-only sender when no SMTP host
// is configured so local development works without a mail server.
func NewSender(cfg *config.Config) Sender {
	if cfg.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, emails will be logged instead of sent")
		return &logSender{}
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	return &smtpSender{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		from:       cfg.SMTPFrom,
		senderName: cfg.SenderName,
		auth:       auth,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	msg := s.buildMessage(to, subject, body)
	address := fmt.Sprintf("%s:%d", s.host, s.port)

	if s.port == 465 {
		return s.sendImplicitTLS(address, to, msg)
	}
	return s.sendSTARTTLS(address, to, msg)
}

func (s *smtpSender) sendImplicitTLS(address, to string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: s.host}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: dialTimeout}, "tcp", address, tlsConfig)
	if err != nil {
		return fmt.Errorf("connecting to smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	return s.sendViaClient(client, to, msg)
}

func (s *smtpSender) sendSTARTTLS(address, to string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting tls: %w", err)
	}

	return s.sendViaClient(client, to, msg)
}

func (s *smtpSender) sendViaClient(client *smtp.Client, to string, msg []byte) error {
	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data writer: %w", err)
	}

	return client.Quit()
}

func (s *smtpSender) buildMessage(to, subject, body string) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", s.senderName)

	msgID := fmt.Sprintf("<%d.%d@%s>", time.Now().UnixNano(), rand.Int63(), s.host)
	date := time.Now().Format(time.RFC1123Z)

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		msgID, date, to, encodedSenderName, s.from, encodedSubject, body,
	)
}

// logSender writes emails to the log. Used when SMTP is not configured.
type logSender struct{}

func (l *logSender) Send(to, subject, body string) error {
	log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email (not sent, SMTP disabled)")
	return nil
}
