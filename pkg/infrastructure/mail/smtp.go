package mail

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/pkg/errors"
	gomail "gopkg.in/mail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
	Timeout  time.Duration
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(config Config) *SMTPSender {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	dialer.SSL = config.SSL
	dialer.TLSConfig = &tls.Config{ServerName: config.Host}
	if config.Timeout > 0 {
		dialer.Timeout = config.Timeout
	}
	from := config.From
	if from == "" {
		from = config.Username
	}
	return &SMTPSender{dialer: dialer, from: from}
}

// Send delivers a plain text message. Multiple recipients are blind copied.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	if len(to) == 1 {
		m.SetHeader("To", to[0])
	} else {
		m.SetHeader("To", s.from)
		m.SetHeader("Bcc", to...)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "failed to send mail %q", subject)
	}
	return nil
}
