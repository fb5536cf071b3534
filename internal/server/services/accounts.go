// Package services contains server-side business logic. AccountService
// drives the credential lifecycle: registration with verification resend,
// email verification, login, password reset, self-delete and federated
// login.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/config"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/models"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/onetime"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Caller-facing messages.
const (
	MsgInvalidOrExpiredToken = "Invalid or expired token"
	MsgEmailTaken            = "A user with this email address already exists"
	MsgUnknownEmail          = "Unknown e-mail"
	MsgUsesGoogleLogin       = "Account uses Google Login"
	MsgWrongPassword         = "Wrong password"
	MsgProviderUnverified    = "Google email not verified"
	MsgInvalidSession        = "Invalid Token"
	MsgInvalidSubject        = "Invalid User ID in token"

	MsgEmailVerified  = "Email verified successfully"
	MsgResetRequested = "If an account exists, a reset email has been sent"
	MsgPasswordReset  = "Password reset successfully"
	MsgAccountDeleted = "Account deleted successfully"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

type SessionIssuer interface {
	Issue(subjectID string) (string, error)
	Verify(token string) (string, error)
}

// Notifier delivers the account emails. Failures never undo a committed
// state change.
type Notifier interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// AuthResult is returned by operations that start a session.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type AccountService struct {
	runner       dbx.Runner
	repomanager  repomanager.RepositoryManager
	hasher       PasswordHasher
	sessions     SessionIssuer
	notifier     Notifier
	verification *onetime.Policy
	reset        *onetime.Policy
	timeout      time.Duration
	logger       logging.Logger
	now          func() time.Time
}

func NewAccountService(
	runner dbx.Runner,
	m repomanager.RepositoryManager,
	h PasswordHasher,
	s SessionIssuer,
	n Notifier,
	l logging.Logger,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		runner:       runner,
		repomanager:  m,
		hasher:       h,
		sessions:     s,
		notifier:     n,
		verification: onetime.NewPolicy(cfg.VerificationTTL),
		reset:        onetime.NewPolicy(cfg.PasswordResetTTL),
		timeout:      cfg.StoreTimeout,
		logger:       l.With("module", "account_service"),
		now:          time.Now,
	}
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account, or re-sends verification for an
// existing unverified one. A verified account with the same email is a
// conflict.
func (s *AccountService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email = NormalizeEmail(email)

	var (
		user  *models.User
		token string
	)

	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.IsVerified {
				return common.Conflict(MsgEmailTaken)
			}

			tok, exp := s.verification.Issue()
			ok, err := repo.SetVerificationToken(ctx, existing.ID, tok, exp)
			if err != nil {
				return err
			}
			if !ok {
				return common.Conflict(MsgEmailTaken)
			}

			existing.VerificationToken = &tok
			existing.VerificationTokenExpiresAt = &exp
			existing.UpdatedAt = s.now().UTC()
			user, token = existing, tok
			return nil

		case errors.Is(err, common.ErrorNotFound):
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return err
			}

			tok, exp := s.verification.Issue()
			created, err := repo.Create(ctx, &models.User{
				Email:                      email,
				PasswordHash:               &hash,
				VerificationToken:          &tok,
				VerificationTokenExpiresAt: &exp,
			})
			if err != nil {
				if errors.Is(err, common.ErrorConflict) {
					return common.Conflict(MsgEmailTaken)
				}
				return err
			}

			user, token = created, tok
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	if err := s.notifier.SendVerification(ctx, user.Email, token); err != nil {
		s.logger.Error(ctx, "Failed to send verification email", "user_id", user.ID, "error", err)
	}

	return s.startSession(ctx, user)
}

// VerifyEmail consumes a verification token. Unknown, expired and already
// used tokens are reported the same way.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if token == "" {
		return common.BadRequest(MsgInvalidOrExpiredToken)
	}

	id, err := s.repomanager.Users(s.runner.Conn()).ConsumeVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.BadRequest(MsgInvalidOrExpiredToken)
		}
		return s.fail(ctx, "verify email", err)
	}

	s.logger.Info(ctx, "Email verified", "user_id", id)
	return nil
}

// Login checks a password. Unverified accounts may log in.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repomanager.Users(s.runner.Conn()).FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(MsgUnknownEmail)
		}
		return nil, s.fail(ctx, "login", err)
	}

	if !user.HasPassword() {
		return nil, common.Unauthorized(MsgUsesGoogleLogin)
	}
	if !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, common.Unauthorized(MsgWrongPassword)
	}

	return s.startSession(ctx, user)
}

// RequestPasswordReset issues a reset token when the email is known. The
// outcome is the same for unknown emails; only a failed send for a known
// email is reported.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email = NormalizeEmail(email)
	tok, exp := s.reset.Issue()

	ok, err := s.repomanager.Users(s.runner.Conn()).SetResetTokenByEmail(ctx, email, tok, exp)
	if err != nil {
		return s.fail(ctx, "request password reset", err)
	}
	if !ok {
		s.logger.Debug(ctx, "Password reset requested for unknown email")
		return nil
	}

	if err := s.notifier.SendPasswordReset(ctx, email, tok); err != nil {
		return s.fail(ctx, "send password reset email", err)
	}
	return nil
}

// ConfirmPasswordReset replaces the password and clears the reset token in
// one store update.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if token == "" {
		return common.BadRequest(MsgInvalidOrExpiredToken)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.fail(ctx, "hash password", err)
	}

	id, err := s.repomanager.Users(s.runner.Conn()).ConsumeResetToken(ctx, token, hash, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.BadRequest(MsgInvalidOrExpiredToken)
		}
		return s.fail(ctx, "reset password", err)
	}

	s.logger.Info(ctx, "Password reset", "user_id", id)
	return nil
}

// DeleteAccount removes the account of an authenticated subject.
func (s *AccountService) DeleteAccount(ctx context.Context, subjectID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := uuid.Parse(subjectID)
	if err != nil {
		return common.Unauthorized(MsgInvalidSubject)
	}

	deleted, err := s.repomanager.Users(s.runner.Conn()).Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete account", err)
	}

	s.logger.Info(ctx, "Account deleted", "user_id", id, "existed", deleted)
	return nil
}

// FederatedUpsert signs in a provider-attested identity. An existing
// account with the same email is linked and marked verified.
func (s *AccountService) FederatedUpsert(ctx context.Context, externalID, email string, emailVerified bool) (*AuthResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !emailVerified {
		return nil, common.Unauthorized(MsgProviderUnverified)
	}

	user, err := s.repomanager.Users(s.runner.Conn()).UpsertFederated(ctx, NormalizeEmail(email), externalID)
	if err != nil {
		return nil, s.fail(ctx, "federated upsert", err)
	}

	return s.startSession(ctx, user)
}

// Authenticate resolves a bearer token to its subject id.
func (s *AccountService) Authenticate(token string) (string, error) {
	subject, err := s.sessions.Verify(token)
	if err != nil {
		return "", common.Unauthorized(MsgInvalidSession)
	}
	return subject, nil
}

func (s *AccountService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := s.sessions.Issue(user.ID.String())
	if err != nil {
		return nil, s.fail(ctx, "issue session token", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fail passes classified errors through and hides everything else behind
// an internal error after logging it.
func (s *AccountService) fail(ctx context.Context, op string, err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return e
	}
	s.logger.Error(ctx, "Operation failed", "op", op, "error", err)
	return common.Internal(err)
}
