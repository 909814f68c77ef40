package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	token   string
	saves   int
	clears  int
	loadErr error
}

func (m *memStore) LoadToken() (string, error) { return m.token, m.loadErr }

func (m *memStore) SaveToken(token string) error {
	m.saves++
	m.token = token
	return nil
}

func (m *memStore) ClearToken() error {
	m.clears++
	m.token = ""
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSessionStartAndEnd(t *testing.T) {
	store := &memStore{}
	s := NewSession(store)
	assert.False(t, s.Authenticated())

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	require.NoError(t, s.Start(token))

	assert.True(t, s.Authenticated())
	assert.Equal(t, token, s.Token())
	assert.Equal(t, token, store.token)
	got, ok := s.ExpiresAt()
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))

	require.NoError(t, s.End())
	assert.False(t, s.Authenticated())
	assert.Empty(t, store.token)
	assert.Equal(t, 1, store.clears)
}

func TestSessionStartRejectsEmptyToken(t *testing.T) {
	s := NewSession(nil)
	assert.Error(t, s.Start(""))
	assert.False(t, s.Authenticated())
}

func TestSessionMemoryOnly(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Start("opaque-token"))
	assert.Equal(t, "opaque-token", s.Token())
	_, ok := s.ExpiresAt()
	assert.False(t, ok)
	assert.False(t, s.Restore())
	require.NoError(t, s.End())
}

func TestSessionRestore(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{token: token}
	s := NewSession(store)

	assert.True(t, s.Restore())
	assert.Equal(t, token, s.Token())
}

func TestSessionRestoreDiscardsExpiredToken(t *testing.T) {
	store := &memStore{token: signedToken(t, time.Now().Add(-time.Minute))}
	s := NewSession(store)

	assert.False(t, s.Restore())
	assert.False(t, s.Authenticated())
	assert.Empty(t, store.token)
}

func TestSessionRestoreLoadError(t *testing.T) {
	s := NewSession(&memStore{loadErr: errors.New("disk gone")})
	assert.False(t, s.Restore())
	assert.False(t, s.Authenticated())
}
