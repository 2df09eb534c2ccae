package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"sync"
	"time"

	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/models"
)

func makeSessionId() string {
	idBytes := make([]byte, 40)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(idBytes)[:40]
}

/*
Session is everything this server keeps for one browser. The browser itself
only holds a signed cookie naming the session and carrying the "logged in"
flag; the backend's own cookies live in Backend's jar.
*/
type Session struct {
	ID        string
	Backend   *backend.Client
	CSRFToken string

	mu        sync.Mutex
	expiresAt time.Time
	loggedIn  bool
	user      *models.User
	views     map[string]any

	// Held while asking the backend who we are, so concurrent requests from
	// one browser check once.
	checkMu sync.Mutex
}

func newSession(client *backend.Client, expiresAt time.Time) *Session {
	return &Session{
		ID:        makeSessionId(),
		Backend:   client,
		CSRFToken: makeSessionId(),
		expiresAt: expiresAt,
		views:     make(map[string]any),
	}
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) touch(expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = expiresAt
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.expiresAt)
}

func (s *Session) authenticate(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	s.user = user
}

// Invalidate drops the logged-in flag and user. Call it whenever the backend
// says our session is gone (401 or 419).
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	s.user = nil
	s.views = make(map[string]any)
}

// InvalidateIfUnauthorized invalidates the session when err is the backend
// rejecting it. Reports whether it did.
func (s *Session) InvalidateIfUnauthorized(err error) bool {
	if backend.IsUnauthorized(err) {
		s.Invalidate()
		return true
	}
	return false
}

// Login signs in to the backend and loads the user. On failure the session
// stays anonymous.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := s.Backend.Login(ctx, email, password); err != nil {
		return nil, err
	}
	user, err := s.Backend.Me(ctx)
	if err != nil {
		s.Invalidate()
		return nil, err
	}
	s.authenticate(user)
	return user, nil
}

// Logout tells the backend we are leaving, but clears local state whether or
// not the backend heard us.
func (s *Session) Logout(ctx context.Context) {
	if err := s.Backend.Logout(ctx); err != nil {
		logging.ExtractLogger(ctx).Debug().Err(err).Msg("backend logout failed, clearing session anyway")
	}
	s.Invalidate()
}

func (s *Session) view(name string, create func() any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[name]
	if !ok {
		v = create()
		s.views[name] = v
	}
	return v
}
