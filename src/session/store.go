package session

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/oops"
)

var ErrNoSession = errors.New("no session found")

// CookieState is what the browser holds, signed and encrypted.
type CookieState struct {
	SessionID string
	LoggedIn  bool
}

type StoreOptions struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool

	// Random keys are generated when these are empty, which logs everyone
	// out on restart. Sessions are in memory, so that happens regardless.
	HashKey  []byte
	BlockKey []byte

	Duration  time.Duration
	NewClient func() (*backend.Client, error)
}

func OptionsFromConfig() StoreOptions {
	return StoreOptions{
		CookieName:   config.Config.Auth.CookieName,
		CookieDomain: config.Config.Auth.CookieDomain,
		CookieSecure: config.Config.Auth.CookieSecure,
		HashKey:      []byte(config.Config.Auth.HashKey),
		BlockKey:     []byte(config.Config.Auth.BlockKey),
		Duration:     config.Config.Auth.SessionDuration,
		NewClient: func() (*backend.Client, error) {
			return backend.NewClient(backend.OptionsFromConfig())
		},
	}
}

type Store struct {
	opts  StoreOptions
	codec *securecookie.SecureCookie
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(opts StoreOptions) *Store {
	if len(opts.HashKey) == 0 {
		opts.HashKey = securecookie.GenerateRandomKey(64)
	}
	if len(opts.BlockKey) == 0 {
		opts.BlockKey = securecookie.GenerateRandomKey(32)
	}
	if opts.Duration == 0 {
		opts.Duration = 14 * 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "KCHAdminSession"
	}

	codec := securecookie.New(opts.HashKey, opts.BlockKey)
	codec.MaxAge(int(opts.Duration.Seconds()))

	return &Store{
		opts:     opts,
		codec:    codec,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) CookieName() string {
	return st.opts.CookieName
}

// Create starts an anonymous session with a fresh backend client.
func (st *Store) Create() (*Session, error) {
	client, err := st.opts.NewClient()
	if err != nil {
		return nil, oops.New(err, "failed to create backend client for session")
	}
	sess := newSession(client, st.now().Add(st.opts.Duration))

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
	return sess, nil
}

// Rotate replaces sess with a session under a new ID and CSRF token that
// keeps its backend client and login state. The old ID stops working.
func (st *Store) Rotate(sess *Session) *Session {
	sess.mu.Lock()
	fresh := newSession(sess.Backend, st.now().Add(st.opts.Duration))
	fresh.loggedIn = sess.loggedIn
	fresh.user = sess.user
	sess.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, sess.ID)
	st.sessions[fresh.ID] = fresh
	return fresh
}

// Get returns a live session and extends its expiry.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()

	now := st.now()
	if !ok || sess.expired(now) {
		return nil, ErrNoSession
	}
	sess.touch(now.Add(st.opts.Duration))
	return sess, nil
}

// Deletes a session by id. If no session with that id exists, nothing
// happens.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) DeleteExpired() int {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, sess := range st.sessions {
		if sess.expired(now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) Encode(state CookieState) (string, error) {
	value, err := st.codec.Encode(st.opts.CookieName, state)
	if err != nil {
		return "", oops.New(err, "failed to encode session cookie")
	}
	return value, nil
}

func (st *Store) Decode(value string) (CookieState, error) {
	var state CookieState
	if err := st.codec.Decode(st.opts.CookieName, value, &state); err != nil {
		return CookieState{}, err
	}
	return state, nil
}

// NewSessionCookie writes the session's current logged-in flag into a cookie.
func (st *Store) NewSessionCookie(sess *Session) (*http.Cookie, error) {
	value, err := st.Encode(CookieState{SessionID: sess.ID, LoggedIn: sess.LoggedIn()})
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:  st.opts.CookieName,
		Value: value,
		Path:  "/",

		Domain:  st.opts.CookieDomain,
		Expires: st.now().Add(st.opts.Duration),

		Secure:   st.opts.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (st *Store) DeleteSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:   st.opts.CookieName,
		Path:   "/",
		Domain: st.opts.CookieDomain,
		MaxAge: -1,
	}
}
