package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

// smtpSendMail is a seam for tests.
var smtpSendMail = smtp.SendMail

// SMTPSender submits messages to an SMTP relay (Mailhog in development).
type SMTPSender struct {
	addr string
	from *mail.Address
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPSender returns a sender for host:port. Auth is used only when user
// is set.
func NewSMTPSender(host string, port int, user, password, from string) (*SMTPSender, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}

	s := &SMTPSender{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		from: addr,
		now:  time.Now,
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("parse recipient: %w", err)
	}

	msg := s.build(rcpt, subject, body)
	if err := smtpSendMail(s.addr, s.auth, s.from.Address, []string{rcpt.Address}, msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(to *mail.Address, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.from.String())
	fmt.Fprintf(&b, "To: %s\r\n", to.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.Bytes()
}
