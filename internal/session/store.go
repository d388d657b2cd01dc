// Package session owns the client's authentication state: the bearer token,
// the user id derived from it, and the token file persisted between runs.
package session

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"memefeed/internal/models"
	"memefeed/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

// State is a snapshot of the authentication state. Token and UserID are both
// set or both empty; UserID is always derived from the token's id claim.
type State struct {
	Authenticated bool
	Token         string
	UserID        string
}

// Store is the single writer of the persisted token. Readers receive value
// copies and must treat the token as immutable for the duration of one call.
type Store struct {
	mu    sync.RWMutex
	state State
	path  string
}

// Open creates a Store backed by the token file at path and restores the
// persisted session if one exists. A missing, unreadable, or undecodable
// token falls open to the unauthenticated state.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, models.NewInternalError(err)
	}
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			observability.GlobalLogger.Warn("token file unreadable, starting signed out",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return s, nil
	}

	token := strings.TrimSpace(string(raw))
	userID, err := decodeUserID(token)
	if err != nil {
		observability.GlobalLogger.Warn("persisted token undecodable, starting signed out",
			slog.String("error", err.Error()))
		return s, nil
	}

	s.state = State{Authenticated: true, Token: token, UserID: userID}
	return s, nil
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the bearer token, or an unauthorized error when signed out.
// Every authorized data call goes through this guard.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Authenticated {
		return "", models.NewUnauthorizedError("not authenticated")
	}
	return s.state.Token, nil
}

// UserID returns the id decoded from the current token, or an unauthorized
// error when signed out.
func (s *Store) UserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.Authenticated {
		return "", models.NewUnauthorizedError("not authenticated")
	}
	return s.state.UserID, nil
}

// Authenticate persists the token handed to it after a successful login and
// flips the session to authenticated. It validates only that the token is a
// well-formed JWT with a decodable id claim; expiry is discovered lazily via
// 401 responses or the expiry watcher.
func (s *Store) Authenticate(token string) error {
	token = strings.TrimSpace(token)
	userID, err := decodeUserID(token)
	if err != nil {
		return models.NewValidationError("malformed bearer token: " + err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return models.NewInternalError(err)
	}
	s.state = State{Authenticated: true, Token: token, UserID: userID}
	return nil
}

// SignOut deletes the persisted token and resets to unauthenticated.
// Subsequent Token calls fail until the next Authenticate.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.NewInternalError(err)
	}
	return nil
}

// WatchExpiry periodically checks the token's exp claim and signs out once it
// has passed, invoking onExpire after the sign-out. It blocks until ctx is
// done and is meant to run in its own goroutine.
func (s *Store) WatchExpiry(ctx context.Context, interval time.Duration, onExpire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.State()
			if !st.Authenticated {
				continue
			}
			if tokenExpired(st.Token, time.Now()) {
				observability.GlobalLogger.Info("token expired, signing out")
				_ = s.SignOut()
				if onExpire != nil {
					onExpire()
				}
			}
		}
	}
}

// decodeUserID extracts the id claim from a JWT without verifying its
// signature. The client never holds the signing secret; the server is the
// authority and rejects tampered tokens with a 401.
func decodeUserID(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", errors.New("token has no id claim")
	}
	return id, nil
}

// tokenExpired reports whether the token's exp claim is in the past.
// Tokens without an exp claim never expire client-side.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
