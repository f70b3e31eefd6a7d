package services

import (
	"fmt"
	"strings"

	"waste-collect/internal/auth-service/core/domain/dto"
	"waste-collect/internal/auth-service/core/myerrors"
	"waste-collect/internal/identity"
)

const (
	maxUsernameLen = 100

	minEmailLen = 5
	maxEmailLen = 100

	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

func validateRegistration(req dto.RegisterRequestDto) (username, email, password, role string, err error) {
	if req.Username == nil || strings.TrimSpace(*req.Username) == "" {
		return "", "", "", "", fmt.Errorf("%w: username is required", myerrors.ErrValidation)
	}
	username = strings.TrimSpace(*req.Username)
	if len(username) > maxUsernameLen {
		return "", "", "", "", fmt.Errorf("%w: username longer than %d characters", myerrors.ErrValidation, maxUsernameLen)
	}

	email, err = validateEmail(req.Email)
	if err != nil {
		return "", "", "", "", err
	}
	password, err = validatePassword(req.Password)
	if err != nil {
		return "", "", "", "", err
	}

	if req.Role == nil {
		return "", "", "", "", fmt.Errorf("%w: role is required", myerrors.ErrValidation)
	}
	role = strings.ToUpper(strings.TrimSpace(*req.Role))
	// admins are provisioned out of band, not self-registered
	if role != identity.RoleCitizen && role != identity.RoleDriver {
		return "", "", "", "", fmt.Errorf("%w: role must be CITIZEN or DRIVER", myerrors.ErrValidation)
	}

	return username, email, password, role, nil
}

func validateLogin(req dto.LoginRequestDto) (email, password string, err error) {
	email, err = validateEmail(req.Email)
	if err != nil {
		return "", "", err
	}
	password, err = validatePassword(req.Password)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func validateEmail(raw *string) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: email is required", myerrors.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(*raw))
	if len(email) < minEmailLen || len(email) > maxEmailLen {
		return "", fmt.Errorf("%w: email length must be in range [%d, %d]", myerrors.ErrValidation, minEmailLen, maxEmailLen)
	}
	if strings.Count(email, "@") != 1 {
		return "", fmt.Errorf("%w: email must contain exactly one @", myerrors.ErrValidation)
	}
	return email, nil
}

func validatePassword(raw *string) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: password is required", myerrors.ErrValidation)
	}
	if len(*raw) < minPasswordLen || len(*raw) > maxPasswordLen {
		return "", fmt.Errorf("%w: password length must be in range [%d, %d]", myerrors.ErrValidation, minPasswordLen, maxPasswordLen)
	}
	return *raw, nil
}
