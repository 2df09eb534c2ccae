package website

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/templates"
)

const NoticesCookieName = "kch_notices"

// Cookie values must be ASCII, and our notices are in Thai, so the list
// travels as base64 JSON.

func getNoticesFromCookie(c *RequestContext) []templates.Notice {
	cookie, err := c.Req.Cookie(NoticesCookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			c.Logger.Warn().Err(err).Msg("failed to get notices cookie")
		}
		return nil
	}
	notices, err := deserializeNoticesFromCookie(cookie.Value)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("ignoring malformed notices cookie")
	}
	return notices
}

func storeNoticesInCookie(c *RequestContext, res *ResponseData) {
	serialized := serializeNoticesForCookie(c, res.FutureNotices)
	if serialized != "" {
		noticesCookie := http.Cookie{
			Name:     NoticesCookieName,
			Value:    serialized,
			Path:     "/",
			Domain:   config.Config.Auth.CookieDomain,
			Expires:  time.Now().Add(time.Minute * 5),
			Secure:   config.Config.Auth.CookieSecure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		res.SetCookie(&noticesCookie)
	} else if !isRedirect(*res) {
		// Notices survive redirects until a page shows them.
		noticesCookie := http.Cookie{
			Name:   NoticesCookieName,
			Path:   "/",
			Domain: config.Config.Auth.CookieDomain,
			MaxAge: -1,
		}
		res.SetCookie(&noticesCookie)
	}
}

func serializeNoticesForCookie(c *RequestContext, notices []templates.Notice) string {
	const maxSize = 2048

	var kept []templates.Notice
	var serialized string
	for _, notice := range notices {
		candidate := encodeNotices(append(kept, notice))
		if len(candidate) > maxSize {
			c.Logger.Warn().Interface("Notices", notices).Msg("Notices too big for cookie")
			break
		}
		kept = append(kept, notice)
		serialized = candidate
	}
	return serialized
}

func encodeNotices(notices []templates.Notice) string {
	data, err := json.Marshal(notices)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func deserializeNoticesFromCookie(cookieVal string) ([]templates.Notice, error) {
	data, err := base64.RawURLEncoding.DecodeString(cookieVal)
	if err != nil {
		return nil, err
	}
	var notices []templates.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

func storeNoticesInCookieMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		storeNoticesInCookie(c, &res)
		return res
	}
}
