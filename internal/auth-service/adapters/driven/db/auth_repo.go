package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"waste-collect/internal/auth-service/core/domain/model"
	"waste-collect/internal/auth-service/core/myerrors"
)

const uniqueViolation = "23505"

type AuthRepo struct {
	db *DB
}

func NewAuthRepo(db *DB) *AuthRepo {
	return &AuthRepo{db: db}
}

func (ar *AuthRepo) Create(ctx context.Context, user model.User) (string, error) {
	id := uuid.NewString()
	_, err := ar.db.GetConn().Exec(ctx, `
		INSERT INTO users (user_id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, user.Username, user.Email, user.PasswordHash, user.Role,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", myerrors.ErrEmailRegistered
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (ar *AuthRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := ar.db.GetConn().QueryRow(ctx, `
		SELECT user_id, username, email, password_hash, role, created_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, myerrors.ErrUnknownCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("read user: %w", err)
	}
	return u, nil
}
