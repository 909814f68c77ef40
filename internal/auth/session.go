package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

// Store persists the session token between runs. A Session without a
// store keeps the token in memory only.
type Store interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Session owns the bearer token for the current run. It is created empty,
// started by a successful login and ended by logout or by a 401.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	store     Store
	now       func() time.Time
}

func NewSession(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Restore loads a persisted token, discarding it if it has expired.
func (s *Session) Restore() bool {
	if s.store == nil {
		return false
	}
	token, err := s.store.LoadToken()
	if err != nil {
		log.Warnf("Failed to load persisted session: %v", err)
		return false
	}
	if token == "" {
		return false
	}

	expiresAt := tokenExpiry(token)
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		log.Info("Persisted session has expired, discarding it.")
		if err := s.store.ClearToken(); err != nil {
			log.Warnf("Failed to clear expired session: %v", err)
		}
		return false
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.mu.Unlock()
	return true
}

// Start installs a freshly issued token.
func (s *Session) Start(token string) error {
	if token == "" {
		return fmt.Errorf("empty session token")
	}
	s.mu.Lock()
	s.token = token
	s.expiresAt = tokenExpiry(token)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveToken(token); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return nil
}

// End forgets the token, including its persisted copy.
func (s *Session) End() error {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear persisted session: %w", err)
		}
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt reports the token's exp claim, if it carried one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt, !s.expiresAt.IsZero()
}

// tokenExpiry reads exp from a JWT without verifying it; the signature is
// the backend's concern. Opaque tokens have no known expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	case int64:
		return time.Unix(exp, 0)
	}
	return time.Time{}
}
