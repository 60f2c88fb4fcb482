package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthn struct {
	token string
	err   error
}

func (f fakeAuthn) Login(_ context.Context, email, _ string) (*models.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResult{ID: "a1", Email: email, Token: f.token}, nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "a1",
		"email": "admin@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func TestSessionLoginLogout(t *testing.T) {
	store := NewMemoryStore()
	s, err := NewSession(store, fakeAuthn{token: "tok"}, nil)
	require.NoError(t, err)

	_, err = s.Token()
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, s.Login(context.Background(), "admin@example.com", "pw"))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, "admin@example.com", s.Email())

	stored, _ := store.Load()
	assert.Equal(t, "tok", stored)

	require.NoError(t, s.Logout())
	assert.False(t, s.LoggedIn())
	stored, _ = store.Load()
	assert.Empty(t, stored)
}

func TestSessionLoginFailureKeepsState(t *testing.T) {
	s, err := NewSession(NewMemoryStore(), fakeAuthn{err: errors.New("invalid credentials")}, nil)
	require.NoError(t, err)

	assert.Error(t, s.Login(context.Background(), "a", "b"))
	assert.False(t, s.LoggedIn())
}

func TestSessionRestoresFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path)

	tok := signed(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(tok))

	s, err := NewSession(store, fakeAuthn{}, nil)
	require.NoError(t, err)
	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.Equal(t, "admin@example.com", s.Email())
}

func TestSessionDropsExpiredToken(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, store.Save(signed(t, time.Now().Add(-time.Minute))))

	s, err := NewSession(store, fakeAuthn{}, nil)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none"))
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
	assert.NoError(t, store.Clear())
}
