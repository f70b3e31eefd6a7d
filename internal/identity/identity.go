package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt"
)

const (
	RoleCitizen = "CITIZEN"
	RoleDriver  = "DRIVER"
	RoleAdmin   = "ADMIN"
)

var (
	ErrNoIdentity  = errors.New("no identity in request")
	ErrInvalidRole = errors.New("unknown role")
)

// Identity is the explicit acting principal handed into every core operation.
// Services never consult ambient state to learn who is calling.
type Identity struct {
	UserID string
	Role   string
}

func (id Identity) IsCitizen() bool { return id.Role == RoleCitizen }
func (id Identity) IsDriver() bool  { return id.Role == RoleDriver }
func (id Identity) IsAdmin() bool   { return id.Role == RoleAdmin }

func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// FromToken parses and verifies an HS256 JWT issued by the auth service and
// returns the identity it carries.
func FromToken(tokenString, secret string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, errors.New("user_id not found in token")
	}
	role, ok := claims["role"].(string)
	if !ok || !ValidRole(role) {
		return Identity{}, ErrInvalidRole
	}

	return Identity{UserID: userID, Role: role}, nil
}

type ctxKey struct{}

// WithContext stores the identity on a request context. This is transport
// plumbing only: handlers pull the identity back out and pass it to services
// as an argument.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
