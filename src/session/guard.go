package session

import (
	"context"

	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/models"
)

type Status int

const (
	StatusChecking Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "unknown"
}

type Resolution struct {
	Status Status
	// Nil when the browser has no usable session cookie and anonymous.
	Session *Session
	User    *models.User
	// The cookie no longer matches the session and should be rewritten.
	CookieStale bool
}

func (r Resolution) Authenticated() bool {
	return r.Status == StatusAuthenticated
}

// Guard decides, for each request, whether the browser is logged in.
type Guard struct {
	Store *Store
}

/*
Resolve takes the raw session cookie value and settles the session's state.

Without the logged-in flag the answer is anonymous and the backend is never
contacted. With the flag, a cached user is trusted; otherwise the backend is
asked who we are, and any failure at all clears the flag.
*/
func (g *Guard) Resolve(ctx context.Context, cookieValue string) Resolution {
	if cookieValue == "" {
		return Resolution{Status: StatusAnonymous}
	}

	state, err := g.Store.Decode(cookieValue)
	if err != nil {
		logging.ExtractLogger(ctx).Debug().Err(err).Msg("ignoring undecodable session cookie")
		return Resolution{Status: StatusAnonymous, CookieStale: true}
	}

	sess, err := g.Store.Get(state.SessionID)
	if err != nil {
		if !state.LoggedIn {
			return Resolution{Status: StatusAnonymous, CookieStale: true}
		}
		// The flag outlived our session (expiry or restart). Check anyway with
		// a fresh session; the backend gets the final say.
		sess, err = g.Store.Create()
		if err != nil {
			logging.ExtractLogger(ctx).Error().Err(err).Msg("failed to create session")
			return Resolution{Status: StatusAnonymous, CookieStale: true}
		}
		sess.authenticate(nil)
		res := g.check(ctx, sess)
		res.CookieStale = true
		return res
	}

	if !state.LoggedIn {
		return Resolution{Status: StatusAnonymous, Session: sess}
	}

	res := g.check(ctx, sess)
	res.CookieStale = !res.Authenticated()
	return res
}

func (g *Guard) check(ctx context.Context, sess *Session) Resolution {
	sess.checkMu.Lock()
	defer sess.checkMu.Unlock()

	if !sess.LoggedIn() {
		return Resolution{Status: StatusAnonymous, Session: sess}
	}
	if user := sess.User(); user != nil {
		return Resolution{Status: StatusAuthenticated, Session: sess, User: user}
	}

	user, err := sess.Backend.Me(ctx)
	if err != nil {
		logging.ExtractLogger(ctx).Info().Err(err).Msg("identity check failed, treating browser as logged out")
		sess.Invalidate()
		return Resolution{Status: StatusAnonymous, Session: sess}
	}
	sess.authenticate(user)
	return Resolution{Status: StatusAuthenticated, Session: sess, User: user}
}
