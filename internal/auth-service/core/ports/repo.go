package ports

import (
	"context"

	"waste-collect/internal/auth-service/core/domain/model"
)

type IAuthRepo interface {
	// Create stores a new user and returns its id. A duplicate email fails
	// with ErrEmailRegistered.
	Create(ctx context.Context, user model.User) (string, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}
