// Package auth holds the admin session used by registry and admin calls.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"slotbook/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
)

var ErrUnauthenticated = errors.New("admin login required")

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

// Session is the explicit admin session. It is passed to every admin operation.
type Session struct {
	store  TokenStore
	authn  Authenticator
	logger *zerolog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
	email string
}

// NewSession restores a persisted token, discarding it if it has expired.
func NewSession(store TokenStore, authn Authenticator, logger *zerolog.Logger) (*Session, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Session{store: store, authn: authn, logger: logger, now: time.Now}

	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return s, nil
	}

	email, exp := inspect(token)
	if !exp.IsZero() && !exp.After(s.now()) {
		s.logger.Info().Time("expired_at", exp).Msg("stored admin token expired")
		if err := store.Clear(); err != nil {
			return nil, err
		}
		return s, nil
	}
	s.token = token
	s.email = email
	return s, nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.authn.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if res.Token == "" {
		return fmt.Errorf("login for %s returned no token", email)
	}
	if err := s.store.Save(res.Token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = res.Token
	s.email = res.Email
	s.mu.Unlock()

	s.logger.Info().Str("email", res.Email).Msg("admin logged in")
	return nil
}

// Logout drops the token from memory and from the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.email = ""
	s.mu.Unlock()

	if had {
		s.logger.Info().Msg("admin logged out")
	}
	return s.store.Clear()
}

// Token returns the bearer token or ErrUnauthenticated.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrUnauthenticated
	}
	return s.token, nil
}

func (s *Session) LoggedIn() bool {
	_, err := s.Token()
	return err == nil
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// inspect reads email and expiry without verifying the signature; the server does that.
func inspect(token string) (string, time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", time.Time{}
	}
	email, _ := claims["email"].(string)
	var exp time.Time
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	return email, exp
}
