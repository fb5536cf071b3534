package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublic_OmitsSecrets(t *testing.T) {
	hash := "$argon2id$..."
	tok := "verify-me"
	exp := time.Now().Add(time.Hour)
	gid := "google-sub"

	u := &User{
		ID:                         uuid.New(),
		Email:                      "a@x.com",
		PasswordHash:               &hash,
		GoogleID:                   &gid,
		VerificationToken:          &tok,
		VerificationTokenExpiresAt: &exp,
		CreatedAt:                  time.Unix(100, 0).UTC(),
		UpdatedAt:                  time.Unix(200, 0).UTC(),
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.ElementsMatch(t,
		[]string{"id", "email", "is_verified", "google_linked", "created_at", "updated_at"},
		keys(got))
	assert.Equal(t, true, got["google_linked"])
	assert.NotContains(t, string(b), hash)
	assert.NotContains(t, string(b), tok)
}

func TestHasPassword(t *testing.T) {
	empty := ""
	hash := "h"

	assert.False(t, (&User{}).HasPassword())
	assert.False(t, (&User{PasswordHash: &empty}).HasPassword())
	assert.True(t, (&User{PasswordHash: &hash}).HasPassword())
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
