package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the identity store. Lookups return common.ErrorNotFound
// when no row matches; inserts that hit the email constraint return
// common.ErrorConflict.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// SetVerificationToken replaces the verification pair of a still
	// unverified user. It reports false when the user is gone or already
	// verified.
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (bool, error)
	// ConsumeVerificationToken marks the owner verified and clears the pair
	// in one conditional update. At most one caller gets the id back.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (uuid.UUID, error)

	SetResetTokenByEmail(ctx context.Context, email, token string, expiresAt time.Time) (bool, error)
	// ConsumeResetToken swaps in passwordHash and clears the reset pair in
	// one conditional update.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// UpsertFederated inserts a verified, password-less user or links
	// googleID to the existing user with the same email.
	UpsertFederated(ctx context.Context, email, googleID string) (*models.User, error)
}
