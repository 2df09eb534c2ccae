package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kohchanghospital.go.th/admin/src/fakebackend"
	"kohchanghospital.go.th/admin/src/models"
)

func newTestClient(t *testing.T) (*Client, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{BaseUrl: srv.URL, SiteUrl: "http://admin.test"})
	require.Nil(t, err)
	return client, fake
}

func loggedInClient(t *testing.T) (*Client, *fakebackend.Server) {
	t.Helper()
	client, fake := newTestClient(t)
	require.Nil(t, client.Login(context.Background(), fakebackend.DefaultEmail, fakebackend.DefaultPassword))
	fake.ResetRequests()
	return client, fake
}

func pdf(name string) *File {
	return &File{Name: name, ContentType: "application/pdf", Content: strings.NewReader("%PDF-1.4")}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Options{BaseUrl: "localhost:8000"})
	assert.NotNil(t, err)

	client, err := NewClient(Options{BaseUrl: "http://localhost:8000/"})
	require.Nil(t, err)
	assert.Equal(t, "http://localhost:8000", client.BaseUrl())
	assert.Equal(t, "http://localhost:8000/storage/news/a%20b.pdf", client.StorageUrl("news/a b.pdf"))
	assert.Equal(t, "", client.StorageUrl(""))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("bad credentials carry the backend message", func(t *testing.T) {
		client, fake := newTestClient(t)
		err := client.Login(ctx, fakebackend.DefaultEmail, "wrong")
		require.NotNil(t, err)
		assert.Equal(t, "These credentials do not match our records.", UserMessage(err, "fallback"))
		assert.False(t, IsUnauthorized(err))

		reqs := fake.Requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, "/sanctum/csrf-cookie", reqs[0].Path)
		assert.Equal(t, "/login", reqs[1].Path)
	})

	t.Run("session survives between calls", func(t *testing.T) {
		client, _ := newTestClient(t)
		require.Nil(t, client.Login(ctx, fakebackend.DefaultEmail, fakebackend.DefaultPassword))

		user, err := client.Me(ctx)
		require.Nil(t, err)
		assert.Equal(t, fakebackend.DefaultEmail, user.Email)

		require.Nil(t, client.Logout(ctx))
		_, err = client.Me(ctx)
		assert.True(t, IsUnauthorized(err))
	})
}

func TestXSRFHeader(t *testing.T) {
	var gotHeader, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sanctum/csrf-cookie":
			http.SetCookie(w, &http.Cookie{Name: XSRFCookieName, Value: url.QueryEscape("abc=="), Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		default:
			gotHeader = r.Header.Get(XSRFHeaderName)
			gotReferer = r.Header.Get("Referer")
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseUrl: srv.URL, SiteUrl: "http://admin.test"})
	require.Nil(t, err)
	require.Nil(t, client.Login(context.Background(), "a@b.c", "x"))
	assert.Equal(t, "abc==", gotHeader)
	assert.Equal(t, "http://admin.test/", gotReferer)
}

func TestListNewsShapes(t *testing.T) {
	items := []struct {
		name string
		body string
	}{
		{"array", `[{"id":1,"title":"a"},{"id":2,"title":"b"}]`},
		{"envelope", `{"data":[{"id":1,"title":"a"},{"id":2,"title":"b"}],"current_page":1,"last_page":1,"total":2}`},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(item.body))
			}))
			defer srv.Close()

			client, err := NewClient(Options{BaseUrl: srv.URL})
			require.Nil(t, err)
			news, err := client.ListNews(context.Background())
			require.Nil(t, err)
			assert.Len(t, news, 2)
			assert.Equal(t, "b", news[1].Title)
		})
	}
}

func TestAnnouncements(t *testing.T) {
	ctx := context.Background()
	client, fake := loggedInClient(t)

	require.Nil(t, client.CreateAnnouncement(ctx, AnnouncementUpload{Title: "ประกาศ", TypeID: 2, File: pdf("a.pdf")}))
	created := fake.Announcements()
	require.Len(t, created, 1)
	assert.Equal(t, 2, created[0].TypeID)

	page, err := client.ListAnnouncements(ctx, url.Values{"page": {"1"}, "per_page": {"10"}, "type_id": {"2"}})
	require.Nil(t, err)
	assert.Equal(t, 1, page.Total)

	// Edits without a new file keep the old one.
	require.Nil(t, client.UpdateAnnouncement(ctx, created[0].ID, AnnouncementUpload{Title: "แก้ไข", TypeID: 1}))
	updated := fake.Announcements()[0]
	assert.Equal(t, "แก้ไข", updated.Title)
	assert.Equal(t, created[0].FilePath, updated.FilePath)

	reqs := fake.RequestsTo(http.MethodPost, "/announcements/"+itoa(created[0].ID))
	require.Len(t, reqs, 1)
	assert.Equal(t, "PUT", reqs[0].Query.Get("_method"))

	require.Nil(t, client.DeleteAnnouncement(ctx, created[0].ID))
	assert.Empty(t, fake.Announcements())

	err = client.DeleteAnnouncement(ctx, created[0].ID)
	assert.True(t, IsNotFound(err))

	types, err := client.ListAnnouncementTypes(ctx)
	require.Nil(t, err)
	assert.NotEmpty(t, types)
}

func TestInvalidPayloadSendsNothing(t *testing.T) {
	ctx := context.Background()
	client, fake := loggedInClient(t)

	err := client.CreateNews(ctx, NewsUpload{Title: " ", File: pdf("a.pdf")})
	var payloadErr *PayloadError
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "title", payloadErr.Field)

	err = client.CreateKnowledge(ctx, KnowledgeUpload{Title: "x"})
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "file", payloadErr.Field)

	assert.Empty(t, fake.Requests())
}

func TestContents(t *testing.T) {
	ctx := context.Background()
	client, fake := loggedInClient(t)

	blocks, err := client.GetContents(ctx, models.ContentPageVision, "th")
	require.Nil(t, err)
	require.NotEmpty(t, blocks)
	assert.Equal(t, "th", fake.RequestsTo(http.MethodGet, "/api/contents/type/about")[0].Query.Get("lang"))

	blocks[0].Body = "<p>ใหม่</p>"
	require.Nil(t, client.SaveContents(ctx, models.ContentPageVision, SaveContentsRequest{Lang: "th", Contents: blocks}))
	assert.Equal(t, "<p>ใหม่</p>", fake.Contents(models.ContentPageVision)[0].Body)

	_, err = client.GetContents(ctx, models.ContentPage("nope"), "th")
	assert.NotNil(t, err)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	client, fake := loggedInClient(t)

	fake.Fail("GET /api/news", http.StatusInternalServerError, "")
	_, err := client.ListNews(ctx)
	require.NotNil(t, err)
	assert.Equal(t, "โหลดไม่สำเร็จ", UserMessage(err, "โหลดไม่สำเร็จ"))
	assert.False(t, IsUnauthorized(err))

	fake.Fail("GET /api/me", 419, "CSRF token mismatch.")
	_, err = client.Me(ctx)
	assert.True(t, IsUnauthorized(err))

	assert.Equal(t, "fallback", UserMessage(errors.New("dial tcp: refused"), "fallback"))
}

func TestNonSuccessStatus(t *testing.T) {
	// Redirects without a Location are handed back unfollowed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			w.WriteHeader(http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotModified)
		}
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseUrl: srv.URL})
	require.Nil(t, err)

	_, err = client.Me(context.Background())
	var resErr *ResponseError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, http.StatusFound, resErr.StatusCode)

	_, err = client.ListNews(context.Background())
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, http.StatusNotModified, resErr.StatusCode)
}

func TestWaitUntilReachable(t *testing.T) {
	client, fake := newTestClient(t)
	fake.Fail("GET /sanctum/csrf-cookie", http.StatusServiceUnavailable, "")
	require.Nil(t, WaitUntilReachable(context.Background(), client), "any HTTP answer counts as reachable")

	unreachable, err := NewClient(Options{BaseUrl: "http://127.0.0.1:1"})
	require.Nil(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, WaitUntilReachable(ctx, unreachable), context.DeadlineExceeded)
}
