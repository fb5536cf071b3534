package users

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)

func TestMemory_CreateUniqueEmail(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = r.Create(ctx, &models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestMemory_VerificationTokenSingleUseUnderRace(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	tok := "tok"
	exp := now.Add(time.Hour)
	_, err := r.Create(ctx, &models.User{Email: "a@x.com", VerificationToken: &tok, VerificationTokenExpiresAt: &exp})
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.ConsumeVerificationToken(ctx, tok, now); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())

	u, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.VerificationToken)
	assert.Nil(t, u.VerificationTokenExpiresAt)
}

func TestMemory_ExpiredTokensStay(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	tok := "rt"
	u, err := r.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)

	ok, err := r.SetResetTokenByEmail(ctx, "a@x.com", tok, now)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = r.ConsumeResetToken(ctx, tok, "hash", now)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PasswordHash)
	require.NotNil(t, got.ResetToken)
}

func TestMemory_SetVerificationTokenSkipsVerified(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Email: "a@x.com", IsVerified: true})
	require.NoError(t, err)

	ok, err := r.SetVerificationToken(ctx, u.ID, "t", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.SetVerificationToken(ctx, uuid.New(), "t", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_UpsertFederatedLinksExisting(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	hash := "h"
	tok := "v"
	exp := time.Now().Add(time.Hour)
	local, err := r.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: &hash, VerificationToken: &tok, VerificationTokenExpiresAt: &exp})
	require.NoError(t, err)

	got, err := r.UpsertFederated(ctx, "a@x.com", "g-1")
	require.NoError(t, err)
	assert.Equal(t, local.ID, got.ID)
	assert.True(t, got.IsVerified)
	assert.True(t, got.HasPassword())
	assert.Nil(t, got.VerificationToken)
	require.NotNil(t, got.GoogleID)
	assert.Equal(t, "g-1", *got.GoogleID)

	fresh, err := r.UpsertFederated(ctx, "b@x.com", "g-2")
	require.NoError(t, err)
	assert.NotEqual(t, local.ID, fresh.ID)
	assert.False(t, fresh.HasPassword())

	deleted, err := r.Delete(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = r.Delete(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
