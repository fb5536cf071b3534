// Package auth issues and verifies the bearer session tokens handed to
// clients after register, login and federated login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity id in the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs session tokens with a process-wide HMAC secret (HS256).
// Rotating the secret invalidates every outstanding session.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens live for ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, issuer: issuer, now: time.Now}
}

// Issue returns a signed token with subject = subjectID and
// exp = now + ttl.
func (i *TokenIssuer) Issue(subjectID string) (string, error) {
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// subject. Expired tokens yield common.ErrTokenExpired; every other
// failure yields common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
