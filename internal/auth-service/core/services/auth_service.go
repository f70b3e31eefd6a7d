package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"waste-collect/internal/auth-service/core/domain/dto"
	"waste-collect/internal/auth-service/core/domain/model"
	"waste-collect/internal/auth-service/core/myerrors"
	"waste-collect/internal/auth-service/core/ports"
	"waste-collect/internal/mylogger"
)

const (
	opTimeout  = 15 * time.Second
	tokenTTL   = 24 * time.Hour
	hashFactor = 10
)

type AuthService struct {
	mylog     mylogger.Logger
	authRepo  ports.IAuthRepo
	jwtSecret string
}

func NewAuthService(mylog mylogger.Logger, authRepo ports.IAuthRepo, jwtSecret string) *AuthService {
	return &AuthService{
		mylog:     mylog,
		authRepo:  authRepo,
		jwtSecret: jwtSecret,
	}
}

func (as *AuthService) Register(ctx context.Context, req dto.RegisterRequestDto) (dto.AuthResponseDto, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	log := as.mylog.Action("Register")

	username, email, password, role, err := validateRegistration(req)
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashFactor)
	if err != nil {
		return dto.AuthResponseDto{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := as.authRepo.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	})
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	token, err := as.issueToken(id, role)
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	log.Info("user registered", "user_id", id, "role", role)
	return dto.AuthResponseDto{UserID: id, Role: role, Token: token}, nil
}

func (as *AuthService) Login(ctx context.Context, req dto.LoginRequestDto) (dto.AuthResponseDto, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	log := as.mylog.Action("Login")

	email, password, err := validateLogin(req)
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	user, err := as.authRepo.GetByEmail(ctx, email)
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		log.Warn("login with wrong password", "user_id", user.ID)
		return dto.AuthResponseDto{}, myerrors.ErrUnknownCredentials
	}

	token, err := as.issueToken(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponseDto{}, err
	}

	log.Info("user logged in", "user_id", user.ID)
	return dto.AuthResponseDto{UserID: user.ID, Role: user.Role, Token: token}, nil
}

func (as *AuthService) issueToken(userID, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(as.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
