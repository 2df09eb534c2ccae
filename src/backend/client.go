package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/oops"
	"kohchanghospital.go.th/admin/src/perf"
)

const (
	// Sanctum hands out the CSRF token in this cookie and expects it back in
	// the header on every state-changing request.
	XSRFCookieName = "XSRF-TOKEN"
	XSRFHeaderName = "X-XSRF-TOKEN"

	maxErrorBodyBytes = 64 * 1024
)

type Options struct {
	BaseUrl string
	// Public URL of this admin site. Sanctum only treats requests as
	// stateful when Referer/Origin match one of its configured domains.
	SiteUrl string
	Timeout time.Duration
}

func OptionsFromConfig() Options {
	return Options{
		BaseUrl: config.Config.Backend.BaseUrl,
		SiteUrl: config.Config.BaseUrl,
		Timeout: config.Config.Backend.Timeout,
	}
}

// Client talks to the REST backend on behalf of exactly one browser session.
// It owns a cookie jar so the backend's session and XSRF cookies stay on the
// server and never reach the browser.
type Client struct {
	baseUrl *url.URL
	siteUrl string
	jar     http.CookieJar
	http    *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, oops.New(err, "invalid backend base url %q", opts.BaseUrl)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, oops.New(nil, "backend base url %q must be absolute", opts.BaseUrl)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, oops.New(err, "failed to create cookie jar")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseUrl: base,
		siteUrl: strings.TrimSuffix(opts.SiteUrl, "/"),
		jar:     jar,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) BaseUrl() string {
	return c.baseUrl.String()
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseUrl
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// StorageUrl is where the backend serves an uploaded file from.
func (c *Client) StorageUrl(filePath string) string {
	if filePath == "" {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(filePath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.baseUrl.String() + "/storage/" + strings.Join(segments, "/")
}

func (c *Client) xsrfToken() string {
	for _, cookie := range c.jar.Cookies(c.baseUrl) {
		if cookie.Name == XSRFCookieName {
			token, err := url.QueryUnescape(cookie.Value)
			if err != nil {
				return cookie.Value
			}
			return token
		}
	}
	return ""
}

func (c *Client) makeRequest(ctx context.Context, method string, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return nil, oops.New(err, "failed to build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.siteUrl != "" {
		req.Header.Set("Referer", c.siteUrl+"/")
		req.Header.Set("Origin", c.siteUrl)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := c.xsrfToken(); token != "" {
			req.Header.Set(XSRFHeaderName, token)
		}
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	name := req.Method + " " + req.URL.Path
	b := perf.StartBlock(ctx, "API", name)
	defer b.End()

	res, err := c.http.Do(req)
	if err != nil {
		return nil, oops.New(err, "request to backend failed: %s", name)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer res.Body.Close()
		resErr := readResponseError(res)
		logging.ExtractLogger(ctx).Debug().
			Str("request", name).
			Int("status", res.StatusCode).
			Str("message", resErr.Message).
			Msg("backend returned an error")
		return nil, resErr
	}
	return res, nil
}

// call performs a request and decodes a JSON response into out, which may be
// nil when the body does not matter.
func (c *Client) call(ctx context.Context, method string, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := c.makeRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return oops.New(err, "failed to read backend response for %s %s", method, path)
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return oops.New(err, "failed to decode backend response for %s %s", method, path)
	}
	return nil
}

func (c *Client) callJSON(ctx context.Context, method string, path string, query url.Values, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return oops.New(err, "failed to encode %s %s payload", method, path)
	}
	return c.call(ctx, method, path, query, bytes.NewReader(body), "application/json", out)
}

func idPath(format string, id int) string {
	return fmt.Sprintf(format, id)
}
