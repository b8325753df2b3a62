package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/ports"
)

const userColumns = `id, username, email, password_hash, reset_token, reset_token_expiry, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	const query = `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, username, email, passwordHash)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	return execAffectingOne(ctx, r.db, query, id, passwordHash)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET reset_token = $2,
            reset_token_expiry = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	return execAffectingOne(ctx, r.db, query, id, digest, expiresAt)
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id uuid.UUID, digest string) error {
	const query = `
        UPDATE users
        SET reset_token = NULL,
            reset_token_expiry = NULL,
            updated_at = NOW()
        WHERE id = $1 AND reset_token = $2
    `
	_, err := r.db.ExecContext(ctx, query, id, digest)
	return err
}

func (r *UserRepository) FindByResetToken(ctx context.Context, digest string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, digest); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error) {
	const query = `
        UPDATE users
        SET password_hash = $2,
            reset_token = NULL,
            reset_token_expiry = NULL,
            updated_at = NOW()
        WHERE reset_token = $1 AND reset_token_expiry > $3
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, digest, passwordHash, now)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
