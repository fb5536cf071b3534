// Package onetime issues single-use tokens for email verification and
// password reset, and defines when a stored token may be consumed.
package onetime

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of checking a supplied token against the stored pair.
type Outcome int

const (
	OK Outcome = iota
	Expired
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Expired:
		return "expired"
	default:
		return "mismatch"
	}
}

// Default validity windows.
const (
	VerificationTTL  = 24 * time.Hour
	PasswordResetTTL = time.Hour
)

// Policy issues tokens valid for TTL.
type Policy struct {
	TTL time.Duration
	now func() time.Time
}

func NewPolicy(ttl time.Duration) *Policy {
	return &Policy{TTL: ttl, now: time.Now}
}

// Issue returns a fresh random v4 UUID and its expiry. 122 of its bits
// come from crypto/rand.
func (p *Policy) Issue() (string, time.Time) {
	return uuid.NewString(), p.now().Add(p.TTL).UTC()
}

// Consume reports whether supplied matches the stored token and the stored
// expiry is strictly after now. A nil stored pair is a mismatch.
//
// The store enforces the same rule in a single conditional update; this
// function is the in-process statement of it.
func Consume(stored *string, expiresAt *time.Time, supplied string, now time.Time) Outcome {
	if stored == nil || expiresAt == nil || supplied == "" {
		return Mismatch
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(supplied)) != 1 {
		return Mismatch
	}
	if !now.Before(*expiresAt) {
		return Expired
	}
	return OK
}
