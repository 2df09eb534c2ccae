package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/oops"
)

// CSRFCookie asks Sanctum for a fresh XSRF-TOKEN cookie. It must precede
// Login on a new client.
func (c *Client) CSRFCookie(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/sanctum/csrf-cookie", nil, nil, "", nil)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	if err := c.CSRFCookie(ctx); err != nil {
		return err
	}
	return c.callJSON(ctx, http.MethodPost, "/login", nil, loginRequest{
		Email:    email,
		Password: password,
	}, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/logout", nil, nil, "", nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/api/me", nil, nil, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Ping reports whether the backend answers at all. Any HTTP response counts,
// since an error status still proves the server is up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.makeRequest(ctx, http.MethodGet, "/sanctum/csrf-cookie", nil, nil, "")
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return oops.New(err, "backend at %s is unreachable", c.BaseUrl())
	}
	res.Body.Close()
	return nil
}

/*
News
*/

// ListNews returns every news item. The backend has sent both a bare array
// and a paginated envelope for this endpoint, so both are accepted.
func (c *Client) ListNews(ctx context.Context) ([]models.News, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/api/news", nil, nil, "", &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var news []models.News
		if err := json.Unmarshal(trimmed, &news); err != nil {
			return nil, oops.New(err, "failed to decode news list")
		}
		return news, nil
	}

	var page models.Page[models.News]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, oops.New(err, "failed to decode news page")
	}
	return page.Items, nil
}

func (c *Client) CreateNews(ctx context.Context, upload NewsUpload) error {
	if err := upload.Validate(); err != nil {
		return err
	}
	body, contentType, err := encodeMultipart([]formField{
		{"title", upload.Title},
	}, upload.File)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, "/api/news", nil, body, contentType, nil)
}

func (c *Client) DeleteNews(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, idPath("/api/news/%d", id), nil, nil, "", nil)
}

/*
Announcements
*/

func (c *Client) ListAnnouncements(ctx context.Context, params url.Values) (models.Page[models.Announcement], error) {
	var page models.Page[models.Announcement]
	err := c.call(ctx, http.MethodGet, "/api/announcements", params, nil, "", &page)
	return page, err
}

func (c *Client) GetAnnouncement(ctx context.Context, id int) (*models.Announcement, error) {
	var res struct {
		Data *models.Announcement `json:"data"`
	}
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, idPath("/api/announcements/%d", id), nil, nil, "", &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &res); err == nil && res.Data != nil {
		return res.Data, nil
	}
	var announcement models.Announcement
	if err := json.Unmarshal(raw, &announcement); err != nil {
		return nil, oops.New(err, "failed to decode announcement %d", id)
	}
	return &announcement, nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, upload AnnouncementUpload) error {
	if err := upload.Validate(false); err != nil {
		return err
	}
	body, contentType, err := encodeMultipart([]formField{
		{"title", upload.Title},
		{"type_id", itoa(upload.TypeID)},
	}, upload.File)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, "/api/announcements", nil, body, contentType, nil)
}

// UpdateAnnouncement uses Laravel's method spoofing because PHP does not
// parse multipart bodies on PUT. Note the route lives outside /api.
func (c *Client) UpdateAnnouncement(ctx context.Context, id int, upload AnnouncementUpload) error {
	if err := upload.Validate(true); err != nil {
		return err
	}
	body, contentType, err := encodeMultipart([]formField{
		{"title", upload.Title},
		{"type_id", itoa(upload.TypeID)},
	}, upload.File)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, idPath("/announcements/%d", id), methodPut, body, contentType, nil)
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, idPath("/api/announcements/%d", id), nil, nil, "", nil)
}

func (c *Client) ListAnnouncementTypes(ctx context.Context) ([]models.AnnouncementType, error) {
	var res struct {
		Data []models.AnnouncementType `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/announcement-types", nil, nil, "", &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

/*
Knowledge
*/

func (c *Client) ListKnowledges(ctx context.Context, params url.Values) (models.Page[models.Knowledge], error) {
	var page models.Page[models.Knowledge]
	err := c.call(ctx, http.MethodGet, "/api/knowledges", params, nil, "", &page)
	return page, err
}

func (c *Client) CreateKnowledge(ctx context.Context, upload KnowledgeUpload) error {
	if err := upload.Validate(false); err != nil {
		return err
	}
	body, contentType, err := encodeMultipart([]formField{
		{"title", upload.Title},
	}, upload.File)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, "/api/knowledges", nil, body, contentType, nil)
}

func (c *Client) UpdateKnowledge(ctx context.Context, id int, upload KnowledgeUpload) error {
	if err := upload.Validate(true); err != nil {
		return err
	}
	body, contentType, err := encodeMultipart([]formField{
		{"title", upload.Title},
	}, upload.File)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, idPath("/api/knowledges/%d", id), methodPut, body, contentType, nil)
}

func (c *Client) DeleteKnowledge(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodDelete, idPath("/api/knowledges/%d", id), nil, nil, "", nil)
}

/*
Static page contents
*/

func (c *Client) GetContents(ctx context.Context, page models.ContentPage, lang string) ([]models.ContentBlock, error) {
	if !page.Valid() {
		return nil, oops.New(nil, "unknown content page %q", page)
	}
	var blocks []models.ContentBlock
	err := c.call(ctx, http.MethodGet, "/api/contents/type/"+string(page), url.Values{"lang": {lang}}, nil, "", &blocks)
	return blocks, err
}

func (c *Client) SaveContents(ctx context.Context, page models.ContentPage, req SaveContentsRequest) error {
	if !page.Valid() {
		return oops.New(nil, "unknown content page %q", page)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.callJSON(ctx, http.MethodPut, "/api/contents/type/"+string(page), nil, req, nil)
}

var methodPut = url.Values{"_method": {"PUT"}}
