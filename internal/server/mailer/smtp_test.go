package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func withFakeSendMail(t *testing.T, err error) *capturedMail {
	t.Helper()
	c := &capturedMail{}
	orig := smtpSendMail
	smtpSendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
		return err
	}
	t.Cleanup(func() { smtpSendMail = orig })
	return c
}

func TestSMTPSender_Send(t *testing.T) {
	c := withFakeSendMail(t, nil)

	s, err := NewSMTPSender("localhost", 1025, "", "", "BeppoFit <noreply@beppofit.com>")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	require.NoError(t, s.Send(context.Background(), "a@x.com", "Hello", "Body text"))

	assert.Equal(t, "localhost:1025", c.addr)
	assert.Nil(t, c.auth)
	assert.Equal(t, "noreply@beppofit.com", c.from)
	assert.Equal(t, []string{"a@x.com"}, c.to)

	headers, body, ok := strings.Cut(c.msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, headers, `From: "BeppoFit" <noreply@beppofit.com>`)
	assert.Contains(t, headers, "To: <a@x.com>")
	assert.Contains(t, headers, "Subject: Hello")
	assert.Contains(t, headers, "Date: Wed, 04 Mar 2026 05:06:07 +0000")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=utf-8")
	assert.Equal(t, "Body text\r\n", body)
}

func TestSMTPSender_UsesAuthWhenUserSet(t *testing.T) {
	c := withFakeSendMail(t, nil)

	s, err := NewSMTPSender("smtp.example.com", 587, "user", "pass", "noreply@beppofit.com")
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), "a@x.com", "s", "b"))

	assert.NotNil(t, c.auth)
	assert.Equal(t, "smtp.example.com:587", c.addr)
}

func TestSMTPSender_Errors(t *testing.T) {
	_, err := NewSMTPSender("localhost", 25, "", "", "not an address")
	require.Error(t, err)

	withFakeSendMail(t, errors.New("connection refused"))
	s, err := NewSMTPSender("localhost", 25, "", "", "noreply@beppofit.com")
	require.NoError(t, err)

	err = s.Send(context.Background(), "bad recipient", "s", "b")
	assert.ErrorContains(t, err, "parse recipient")

	err = s.Send(context.Background(), "a@x.com", "s", "b")
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "a@x.com", "s", "b"), context.Canceled)
}
