// Package models defines the account record and its public view.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is one identity row. Exactly one exists per email.
//
// The verification and reset token pairs are either both set or both nil.
type User struct {
	ID    uuid.UUID
	Email string

	// PasswordHash is nil for accounts created through federated login
	// that never set a local password.
	PasswordHash *string
	// GoogleID is the provider subject once the account is linked.
	GoogleID *string

	IsVerified bool

	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time

	ResetToken          *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// PublicUser is the view of a User handed to clients. It never carries
// credential material or token fields.
type PublicUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	IsVerified   bool      `json:"is_verified"`
	GoogleLinked bool      `json:"google_linked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		IsVerified:   u.IsVerified,
		GoogleLinked: u.GoogleID != nil,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
