package ports

import (
	"context"

	"waste-collect/internal/auth-service/core/domain/dto"
)

type IAuthService interface {
	Register(ctx context.Context, req dto.RegisterRequestDto) (dto.AuthResponseDto, error)
	Login(ctx context.Context, req dto.LoginRequestDto) (dto.AuthResponseDto, error)
}
