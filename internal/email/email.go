package email

import (
	"fmt"
	"log"
	"net/smtp"
)

// Sender delivers transactional mail such as verification and password reset links.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: host + ":" + port,
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}

var _ Sender = (*SMTPSender)(nil)

// NoopSender logs instead of sending. Used when SMTP is not configured so
// registration and password reset flows still complete in development.
type NoopSender struct{}

func (NoopSender) Send(to, subject, body string) error {
	log.Printf("email noop send to=%s subject=%q", to, subject)
	return nil
}

var _ Sender = (*NoopSender)(nil)
