package website

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/oops"
	"kohchanghospital.go.th/admin/src/perf"
	"kohchanghospital.go.th/admin/src/session"
	"kohchanghospital.go.th/admin/src/templates"
	"kohchanghospital.go.th/admin/src/utils"
)

// Anything bigger than this is not one of our forms.
const maxPostSize = 4 * forms.MaxRequestSize

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else if recoveredErr, ok := recovered.(error); ok {
					err = oops.New(recoveredErr, "Recovered from panic")
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		c.RequestID = uuid.New().String()
		logger := c.Logger.With().
			Str("request_id", c.RequestID).
			Str("route", c.Route).
			Logger()
		c.setLogger(&logger)

		c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
		var res ResponseData
		defer func() {
			c.Perf.EndRequest()
			log := c.Logger.Info()
			blockStack := make([]time.Time, 0)
			for i, block := range c.Perf.Snapshot() {
				for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
					blockStack = blockStack[:len(blockStack)-1]
				}
				log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
				blockStack = append(blockStack, block.End)
			}
			log.
				Int("status", utils.OrDefault(res.StatusCode, http.StatusOK)).
				Str("ip", c.RemoteIP()).
				Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, c.Perf.DurationMs()))
		}()

		res = h(c)
		return res
	}
}

/*
loadSession runs the session guard and then keeps the browser's cookie in
step with whatever the handler did to the session: logging in sets the
flag, logging out or a rejected backend call clears it. The cookie is
rewritten on every response that has a session so its expiry slides along
with the server-side one.
*/
func loadSession(store *session.Store) Middleware {
	guard := &session.Guard{Store: store}
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Store = store

			b := c.Perf.StartBlock("MIDDLEWARE", "Resolve session")
			var cookieValue string
			if cookie, err := c.Req.Cookie(store.CookieName()); err == nil {
				cookieValue = cookie.Value
			}
			c.Auth = guard.Resolve(c, cookieValue)
			c.Session = c.Auth.Session
			c.CurrentUser = c.Auth.User
			b.End()

			if c.CurrentUser != nil {
				logger := c.Logger.With().Int("user_id", c.CurrentUser.ID).Logger()
				c.setLogger(&logger)
			}

			res := h(c)

			if c.Session != nil {
				cookie, err := store.NewSessionCookie(c.Session)
				if err != nil {
					c.Logger.Error().Err(err).Msg("failed to write session cookie")
				} else {
					res.SetCookie(cookie)
				}
			} else if c.Auth.CookieStale {
				res.SetCookie(store.DeleteSessionCookie())
			}
			return res
		}
	}
}

// ensureSession gives an anonymous browser a session, which it needs before
// it can log in: the backend's cookies live there.
func ensureSession(c *RequestContext) error {
	if c.Session != nil {
		return nil
	}
	sess, err := c.Store.Create()
	if err != nil {
		return err
	}
	c.Session = sess
	return nil
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil || c.Session == nil || !c.Session.LoggedIn() {
			return c.Redirect(adminurl.BuildLoginPage(), http.StatusSeeOther)
		}

		res := h(c)

		// A handler may have found out mid-request that the backend no longer
		// knows us.
		if !c.Session.LoggedIn() && !isRedirect(res) {
			res = c.Redirect(adminurl.BuildLoginPage(), http.StatusSeeOther)
			res.AddFutureNotice("failure", msgSessionExpired)
		}
		return res
	}
}

func redirectIfLoggedIn(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser != nil {
			return c.Redirect(adminurl.BuildDashboard(), http.StatusSeeOther)
		}
		return h(c)
	}
}

func csrfMiddleware(h Handler) Handler {
	// CSRF mitigation actions per the OWASP cheat sheet:
	// https://cheatsheetseries.owasp.org/cheatsheets/Cross-Site_Request_Forgery_Prevention_Cheat_Sheet.html
	return func(c *RequestContext) ResponseData {
		c.Req.Body = http.MaxBytesReader(c.Res, c.Req.Body, maxPostSize)
		err := c.Req.ParseMultipartForm(forms.MaxRequestSize)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return c.ErrorResponse(http.StatusRequestEntityTooLarge, NewSafeError(err, forms.MsgFileTooLarge))
			}
			return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "ส่งข้อมูลไม่สำเร็จ"))
		}

		csrfToken := c.Req.FormValue(templates.CSRFFieldName)
		if c.Session == nil || csrfToken == "" || csrfToken != c.Session.CSRFToken {
			c.Logger.Warn().Msg("request failed CSRF validation - potential attack?")

			res := c.Redirect(adminurl.BuildLoginPage(), http.StatusSeeOther)
			if c.Session != nil {
				c.Session.Invalidate()
			}
			return res
		}

		return h(c)
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}

func isRedirect(res ResponseData) bool {
	return res.StatusCode >= 300 && res.StatusCode < 400
}
