// Package auth handles password hashing, JWT issuance and verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/storage"
)

// Auth errors.
var (
	// ErrInvalidCredentials is returned on a failed login. Deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidToken is returned for malformed, expired or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the JWT payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements registration, login and token verification.
type Service struct {
	users    storage.UserStore
	secret   []byte
	tokenTTL time.Duration
	metrics  *observability.Metrics
	clock    func() time.Time
	logger   zerolog.Logger
}

// NewService creates the auth service.
func NewService(users storage.UserStore, secret string, tokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// WithClock sets a custom clock for deterministic tokens.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithMetrics attaches Prometheus instrumentation.
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, userName, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Int64("user_id", user.UserID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and returns a signed token with the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.observeLogin("failure")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.observeLogin("failure")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.observeLogin("success")
	return token, user, nil
}

// IssueToken signs an HS256 token for the user.
func (s *Service) IssueToken(user *domain.User) (string, error) {
	now := s.clock()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies a token and loads the current user.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *Service) observeLogin(status string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(status).Inc()
	}
}
