package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kohchanghospital.go.th/admin/src/models"
)

func TestPaginate(t *testing.T) {
	items := make([]models.News, 23)
	for i := range items {
		items[i].ID = i + 1
	}

	page := paginate(items, url.Values{"page": {"3"}, "per_page": {"10"}})
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 23, page.Total)
	assert.Len(t, page.Items, 3)

	page = paginate(items, url.Values{"per_page": {"9999"}})
	assert.Equal(t, 1, page.LastPage)
	assert.Len(t, page.Items, 23)

	page = paginate([]models.News{}, url.Values{})
	assert.Equal(t, 1, page.LastPage)
	assert.Empty(t, page.Items)
}

func TestAPIRequiresSession(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/me")
	require.Nil(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestMutationsRequireXSRF(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/login", "application/json", strings.NewReader(`{"email":"a","password":"b"}`))
	require.Nil(t, err)
	res.Body.Close()
	assert.Equal(t, 419, res.StatusCode)
}

func TestFilters(t *testing.T) {
	s := New()
	s.AddAnnouncement("Procurement notice", 2, time.Now())
	s.AddAnnouncement("General notice", 1, time.Now())
	s.AddAnnouncement("Another procurement", 2, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/announcements?type_id=2&q=PROCUREMENT", nil)
	w := httptest.NewRecorder()
	s.handleListAnnouncements(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
	assert.True(t, strings.Index(w.Body.String(), "Another procurement") < strings.Index(w.Body.String(), "Procurement notice"), "newest first")
}
