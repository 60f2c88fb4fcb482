package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AdminClaims is the payload of an admin bearer token.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo   domain.Repository
	state  domain.StateRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zerolog.Logger
}

func NewAuthService(repo domain.Repository, state domain.StateRepository, secret string, ttl time.Duration, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		state:  state,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// EnsureAdmin creates the configured admin or resets its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin, err := s.repo.UpsertAdmin(ctx, normalizeEmail(email), string(hash))
	if err != nil {
		return err
	}
	s.logger.Info().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("Admin account ready")
	return nil
}

// Login checks credentials and issues a signed token. Attempts are rate limited per email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("credentials", "email and password are required")
	}

	if s.state != nil {
		allowed, err := s.state.CheckRateLimit(ctx, "login:"+email, models.LoginRateLimit, models.LoginRateWindow*time.Second)
		if err != nil {
			s.logger.Error().Err(err).Msg("Login rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("Failed admin login")
		return nil, ErrInvalidCredentials
	}

	token, err := s.issue(admin)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{ID: admin.ID, Email: admin.Email, Token: token}, nil
}

func (s *AuthService) issue(admin *models.Admin) (string, error) {
	now := s.now()
	claims := AdminClaims{
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates signature and expiry and returns the claims.
func (s *AuthService) ParseToken(raw string) (*AdminClaims, error) {
	var claims AdminClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return &claims, nil
}

func (s *AuthService) Profile(ctx context.Context, adminID string) (*models.Admin, error) {
	admin, err := s.repo.GetAdmin(ctx, adminID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return admin, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
