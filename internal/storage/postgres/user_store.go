package postgres

import (
	"context"
	"fmt"
	"strings"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the email is taken.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (user_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, created_at
	`

	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}

	err := s.pool.QueryRow(ctx, query,
		u.UserName,
		strings.ToLower(u.Email),
		u.PasswordHash,
		role,
	).Scan(&u.UserID, &u.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.Role = role
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
		SELECT user_id, user_name, email, password_hash, role, created_at
		FROM users WHERE user_id = $1
	`
	return s.scanOne(ctx, query, userID)
}

// GetByEmail retrieves a user by email. Returns ErrNotFound if not exists.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT user_id, user_name, email, password_hash, role, created_at
		FROM users WHERE email = $1
	`
	return s.scanOne(ctx, query, strings.ToLower(email))
}

// Count returns the total number of users.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *UserStore) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.UserID,
		&u.UserName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
