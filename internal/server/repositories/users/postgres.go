package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, password_hash, google_id, is_verified,
		 verification_token, verification_token_expires_at,
		 reset_token, reset_token_expires_at,
		 created_at, updated_at`

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint hit.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.IsVerified,
		&u.VerificationToken, &u.VerificationTokenExpiresAt,
		&u.ResetToken, &u.ResetTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query :=
		`INSERT INTO users (id, email, password_hash, google_id, is_verified,
		 verification_token, verification_token_expires_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.GoogleID, user.IsVerified,
		user.VerificationToken, user.VerificationTokenExpiresAt).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (bool, error) {
	query :=
		`UPDATE users SET verification_token = $2, verification_token_expires_at = $3, updated_at = NOW()
		 WHERE id = $1 AND is_verified = FALSE
		 `

	n, err := dbx.ExecAffected(ctx, r.db, query, id, token, expiresAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (uuid.UUID, error) {
	query :=
		`UPDATE users SET is_verified = TRUE, verification_token = NULL,
		 verification_token_expires_at = NULL, updated_at = NOW()
		 WHERE verification_token = $1 AND verification_token_expires_at > $2
		 RETURNING id
		 `

	return r.consume(ctx, query, token, now)
}

func (r *PostgresRepository) SetResetTokenByEmail(ctx context.Context, email, token string, expiresAt time.Time) (bool, error) {
	query :=
		`UPDATE users SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		 WHERE email = $1
		 `

	n, err := dbx.ExecAffected(ctx, r.db, query, email, token, expiresAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error) {
	query :=
		`UPDATE users SET password_hash = $3, reset_token = NULL,
		 reset_token_expires_at = NULL, updated_at = NOW()
		 WHERE reset_token = $1 AND reset_token_expires_at > $2
		 RETURNING id
		 `

	return r.consume(ctx, query, token, now, passwordHash)
}

// consume runs a conditional UPDATE ... RETURNING id. No returned row means
// the token did not match or was no longer valid.
func (r *PostgresRepository) consume(ctx context.Context, query string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, common.ErrorNotFound
		}
		return uuid.Nil, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := dbx.ExecAffected(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) UpsertFederated(ctx context.Context, email, googleID string) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, google_id, is_verified)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (email) DO UPDATE SET
		 google_id = EXCLUDED.google_id, is_verified = TRUE,
		 verification_token = NULL, verification_token_expires_at = NULL,
		 updated_at = NOW()
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, uuid.New(), email, googleID))
}
