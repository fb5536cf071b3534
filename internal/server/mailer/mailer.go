// Package mailer delivers the verification and password-reset messages.
//
// Delivery goes through a Sender; SMTP, Amazon SES and a logging sender for
// development are provided.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Sender delivers one plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Links holds the base URLs that messages point at.
type Links struct {
	// PublicURL is where this service is reachable; the verification link
	// hits it directly.
	PublicURL string
	// FrontendURL hosts the reset-password page.
	FrontendURL string
}

// Mailer composes account messages and hands them to a Sender.
type Mailer struct {
	sender Sender
	links  Links
}

func New(sender Sender, links Links) *Mailer {
	return &Mailer{sender: sender, links: links}
}

func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	subject, body := VerificationMessage(m.links.PublicURL, token)
	if err := m.sender.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	subject, body := PasswordResetMessage(m.links.FrontendURL, token)
	if err := m.sender.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

func VerificationMessage(publicURL, token string) (string, string) {
	link := joinLink(publicURL, "/auth/verify", token)
	return "Verify your BeppoFit account",
		"Welcome to BeppoFit! Click here to verify your account: " + link
}

func PasswordResetMessage(frontendURL, token string) (string, string) {
	link := joinLink(frontendURL, "/auth/reset-password", token)
	return "Reset your BeppoFit password",
		"Click here to reset your password: " + link
}

func joinLink(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}
