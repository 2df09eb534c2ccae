package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/fakebackend"
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
)

func newTestStore(t *testing.T) (*Store, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store := NewStore(StoreOptions{
		NewClient: func() (*backend.Client, error) {
			return backend.NewClient(backend.Options{BaseUrl: srv.URL})
		},
	})
	return store, fake
}

func cookieFor(t *testing.T, store *Store, sess *Session) string {
	t.Helper()
	cookie, err := store.NewSessionCookie(sess)
	require.Nil(t, err)
	return cookie.Value
}

func TestMakeSessionId(t *testing.T) {
	id := makeSessionId()
	assert.Len(t, id, 40)
	assert.NotEqual(t, id, makeSessionId())
}

func TestGuardWithoutFlagMakesNoCalls(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	guard := Guard{Store: store}

	res := guard.Resolve(ctx, "")
	assert.Equal(t, StatusAnonymous, res.Status)
	assert.Nil(t, res.Session)

	res = guard.Resolve(ctx, "not-a-signed-value")
	assert.Equal(t, StatusAnonymous, res.Status)
	assert.True(t, res.CookieStale)

	sess, err := store.Create()
	require.Nil(t, err)
	res = guard.Resolve(ctx, cookieFor(t, store, sess))
	assert.Equal(t, StatusAnonymous, res.Status)
	assert.Same(t, sess, res.Session)

	assert.Empty(t, fake.Requests())
}

func TestGuardChecksIdentity(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	guard := Guard{Store: store}

	sess, err := store.Create()
	require.Nil(t, err)
	user, err := sess.Login(ctx, fakebackend.DefaultEmail, fakebackend.DefaultPassword)
	require.Nil(t, err)
	assert.Equal(t, fakebackend.DefaultEmail, user.Email)
	value := cookieFor(t, store, sess)

	fake.ResetRequests()
	res := guard.Resolve(ctx, value)
	require.Equal(t, StatusAuthenticated, res.Status)
	assert.Equal(t, fakebackend.DefaultEmail, res.User.Email)
	assert.Empty(t, fake.Requests(), "a cached user is trusted")

	t.Run("flag without a cached user asks the backend", func(t *testing.T) {
		sess.authenticate(nil)
		fake.ResetRequests()
		res := guard.Resolve(ctx, value)
		assert.Equal(t, StatusAuthenticated, res.Status)
		assert.Len(t, fake.RequestsTo(http.MethodGet, "/api/me"), 1)
	})

	t.Run("failed check clears the flag", func(t *testing.T) {
		sess.authenticate(nil)
		fake.Fail("GET /api/me", http.StatusInternalServerError, "")
		defer fake.Recover("GET /api/me")

		res := guard.Resolve(ctx, value)
		assert.Equal(t, StatusAnonymous, res.Status)
		assert.True(t, res.CookieStale)
		assert.False(t, sess.LoggedIn())
		assert.Nil(t, sess.User())

		state, err := store.Decode(cookieFor(t, store, sess))
		require.Nil(t, err)
		assert.False(t, state.LoggedIn)
	})
}

func TestGuardFlagOutlivesSession(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	guard := Guard{Store: store}

	value, err := store.Encode(CookieState{SessionID: "gone", LoggedIn: true})
	require.Nil(t, err)

	res := guard.Resolve(ctx, value)
	assert.Equal(t, StatusAnonymous, res.Status)
	assert.True(t, res.CookieStale)
	require.NotNil(t, res.Session)
	assert.NotEqual(t, "gone", res.Session.ID)
	assert.Len(t, fake.RequestsTo(http.MethodGet, "/api/me"), 1)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	sess, err := store.Create()
	require.Nil(t, err)
	_, err = sess.Login(ctx, fakebackend.DefaultEmail, fakebackend.DefaultPassword)
	require.Nil(t, err)

	fake.Fail("POST /logout", http.StatusInternalServerError, "boom")
	sess.Logout(ctx)
	assert.False(t, sess.LoggedIn(), "logout clears local state even when the backend fails")
	assert.Nil(t, sess.User())
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	sess, err := store.Create()
	require.Nil(t, err)
	_, err = sess.Login(ctx, fakebackend.DefaultEmail, fakebackend.DefaultPassword)
	require.Nil(t, err)

	rotated := store.Rotate(sess)
	assert.NotEqual(t, sess.ID, rotated.ID)
	assert.NotEqual(t, sess.CSRFToken, rotated.CSRFToken)
	assert.True(t, rotated.LoggedIn())
	assert.Equal(t, sess.User(), rotated.User())
	assert.Same(t, sess.Backend, rotated.Backend, "the backend's cookies come along")

	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	got, err := store.Get(rotated.ID)
	require.Nil(t, err)
	assert.Same(t, rotated, got)
	assert.Equal(t, 1, store.Len())

	_, err = rotated.Backend.Me(ctx)
	assert.Nil(t, err, "still logged in to the backend")
}

func TestLoginFailure(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	sess, err := store.Create()
	require.Nil(t, err)
	_, err = sess.Login(ctx, fakebackend.DefaultEmail, "nope")
	assert.NotNil(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestInvalidateIfUnauthorized(t *testing.T) {
	sess := newSession(nil, time.Now().Add(time.Hour))
	sess.authenticate(&models.User{ID: 1})

	assert.False(t, sess.InvalidateIfUnauthorized(&backend.ResponseError{StatusCode: 500}))
	assert.True(t, sess.LoggedIn())
	assert.True(t, sess.InvalidateIfUnauthorized(&backend.ResponseError{StatusCode: 419}))
	assert.False(t, sess.LoggedIn())
}

func TestExpiry(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	sess, err := store.Create()
	require.Nil(t, err)
	other, err := store.Create()
	require.Nil(t, err)

	now = now.Add(13 * 24 * time.Hour)
	_, err = store.Get(sess.ID)
	require.Nil(t, err, "sliding expiry")

	now = now.Add(2 * 24 * time.Hour)
	assert.Equal(t, 1, store.DeleteExpired())
	_, err = store.Get(other.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(sess.ID)
	assert.Nil(t, err)
}

func TestViews(t *testing.T) {
	sess := newSession(nil, time.Now().Add(time.Hour))
	fetch := func(ctx context.Context, f listing.Filter) (models.Page[models.News], error) {
		return models.Page[models.News]{}, nil
	}

	a := View(sess, "news", fetch)
	b := View(sess, "news", fetch)
	assert.Same(t, a, b)

	sess.Invalidate()
	assert.NotSame(t, a, View(sess, "news", fetch), "views do not survive a logout")
}

func TestSweeper(t *testing.T) {
	store, _ := newTestStore(t)
	job := PeriodicallyDeleteExpiredSessions(store)
	job.Cancel()
	select {
	case <-job.Finished():
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
