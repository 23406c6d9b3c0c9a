package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.User
	nextID int64
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{byID: make(map[int64]*domain.User), nextID: 1}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the email is taken.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.Email == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range s.byID {
		if existing.Email == email {
			return storage.ErrDuplicateKey
		}
	}

	u.UserID = s.nextID
	s.nextID++
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = email

	stored := *u
	s.byID[u.UserID] = &stored
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// GetByEmail retrieves a user by email. Returns ErrNotFound if not exists.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, u := range s.byID {
		if u.Email == lower {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Count returns the total number of users.
func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}
