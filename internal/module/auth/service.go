package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shoutly/server/internal/shared/metrics"
)

// Service implements admin authentication.
type Service struct {
	repo    Repository
	jwt     *JWTManager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new auth service.
func NewService(repo Repository, jwt *JWTManager, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		jwt:     jwt,
		metrics: m,
		logger:  logger,
	}
}

// LoginResult holds a successful login outcome.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *Admin
}

// Login verifies admin credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			// Burn a bcrypt comparison so missing accounts cost the same as wrong passwords
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password),
			)
			s.recordAuthEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.recordAuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateToken(admin)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.recordAuthEvent("login_success")
	s.logger.Info("admin logged in", zap.String("email", admin.Email))

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     admin,
	}, nil
}

// ValidateToken validates a bearer token and returns the claims.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		s.recordAuthEvent("token_invalid")
		return nil, err
	}
	return claims, nil
}

// EnsureDefaultAdmin seeds the admin account from configuration when the
// table is empty. Existing accounts are never modified.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.logger.Warn("default admin credentials not configured, skipping seed")
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &Admin{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("seeded default admin", zap.String("email", email))
	return nil
}

func (s *Service) recordAuthEvent(event string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event)
	}
}
