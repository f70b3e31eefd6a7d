package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"waste-collect/internal/auth-service/core/domain/model"
	"waste-collect/internal/auth-service/core/myerrors"
)

// Store keeps users in memory for tests and the simulator.
type Store struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

func New() *Store {
	return &Store{byEmail: make(map[string]model.User)}
}

func (s *Store) Create(ctx context.Context, user model.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return "", myerrors.ErrEmailRegistered
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	s.byEmail[user.Email] = user
	return user.ID, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, myerrors.ErrUnknownCredentials
	}
	return user, nil
}
