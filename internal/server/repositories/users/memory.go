package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/models"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/onetime"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository with the same semantics as
// the Postgres one. Every method runs under one mutex, which stands in for
// the row-level atomicity of the conditional updates.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: map[uuid.UUID]*models.User{}, now: time.Now}
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *MemoryRepository) byEmail(email string) *models.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.byEmail(email); u != nil {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byEmail(user.Email) != nil {
		return nil, common.ErrorConflict
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	r.users[user.ID] = clone(user)
	return user, nil
}

func (r *MemoryRepository) SetVerificationToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.IsVerified {
		return false, nil
	}
	u.VerificationToken, u.VerificationTokenExpiresAt = &token, &expiresAt
	u.UpdatedAt = r.now().UTC()
	return true, nil
}

func (r *MemoryRepository) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if onetime.Consume(u.VerificationToken, u.VerificationTokenExpiresAt, token, now) != onetime.OK {
			continue
		}
		u.IsVerified = true
		u.VerificationToken, u.VerificationTokenExpiresAt = nil, nil
		u.UpdatedAt = r.now().UTC()
		return u.ID, nil
	}
	return uuid.Nil, common.ErrorNotFound
}

func (r *MemoryRepository) SetResetTokenByEmail(_ context.Context, email, token string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.byEmail(email)
	if u == nil {
		return false, nil
	}
	u.ResetToken, u.ResetTokenExpiresAt = &token, &expiresAt
	u.UpdatedAt = r.now().UTC()
	return true, nil
}

func (r *MemoryRepository) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if onetime.Consume(u.ResetToken, u.ResetTokenExpiresAt, token, now) != onetime.OK {
			continue
		}
		u.PasswordHash = &passwordHash
		u.ResetToken, u.ResetTokenExpiresAt = nil, nil
		u.UpdatedAt = r.now().UTC()
		return u.ID, nil
	}
	return uuid.Nil, common.ErrorNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[id]
	delete(r.users, id)
	return ok, nil
}

func (r *MemoryRepository) UpsertFederated(_ context.Context, email, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	u := r.byEmail(email)
	if u == nil {
		u = &models.User{ID: uuid.New(), Email: email, CreatedAt: now}
		r.users[u.ID] = u
	}
	u.GoogleID = &googleID
	u.IsVerified = true
	u.VerificationToken, u.VerificationTokenExpiresAt = nil, nil
	u.UpdatedAt = now

	return clone(u), nil
}
