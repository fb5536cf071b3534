package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"), 24*time.Hour, "beppofit")

	for _, id := range []string{"user-123", "3f2b8c1e-6f7a-4b35-9a41-0d8f0d3f4f11", "ü"} {
		tok, err := issuer.Issue(id)
		require.NoError(t, err)

		got, err := issuer.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestIssue_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer([]byte("k"), 24*time.Hour, "")
	issuer.now = func() time.Time { return now }

	tok, err := issuer.Issue("u1")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("secret"), -time.Second, "")

	tok, err := issuer.Issue("u1")
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer([]byte("right-secret"), time.Hour, "").Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("wrong-secret"), time.Hour, "").Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("secret"), time.Hour, "")
	tok, err := issuer.Issue("u3")
	require.NoError(t, err)

	dot := strings.LastIndex(tok, ".")
	sig := []byte(tok[dot+1:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := tok[:dot+1] + string(sig)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u4",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("secret"), time.Hour, "").Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_IssuerMismatch(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer([]byte("secret"), time.Hour, "someone-else").Issue("u5")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("secret"), time.Hour, "beppofit").Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("k"), time.Hour, "")
	for _, tok := range []string{"", "not.a.jwt", "a.b", "Bearer x"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, tok)
	}
}
