package website

import (
	"net/http"
	"strings"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/oops"
	"kohchanghospital.go.th/admin/src/templates"
)

const (
	msgLoginFailed     = "อีเมลหรือรหัสผ่านไม่ถูกต้อง"
	msgLoginIncomplete = "กรุณากรอกอีเมลและรหัสผ่าน"
)

type LoginPageData struct {
	templates.BaseData
	Email     string
	Error     string
	SubmitUrl string
}

func renderLoginPage(c *RequestContext, email, errMsg string) ResponseData {
	var res ResponseData
	res.MustWriteTemplate("login.html", LoginPageData{
		BaseData:  getBaseData(c, "เข้าสู่ระบบ"),
		Email:     email,
		Error:     errMsg,
		SubmitUrl: adminurl.BuildLogin(),
	}, c.Perf)
	return res
}

func LoginPage(c *RequestContext) ResponseData {
	// The login form posts a CSRF token, so the browser needs a session
	// before it ever submits.
	if err := ensureSession(c); err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to start session"))
	}
	return renderLoginPage(c, "", "")
}

func Login(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	email := strings.TrimSpace(form.Get("email"))
	password := form.Get("password")
	if email == "" || password == "" {
		return renderLoginPage(c, email, msgLoginIncomplete)
	}

	user, err := c.Session.Login(c, email, password)
	if err != nil {
		c.Logger.Info().Err(err).Str("email", email).Msg("login failed")
		return renderLoginPage(c, email, backend.UserMessage(err, msgLoginFailed))
	}

	// The pre-login ID and CSRF token were handed out to an anonymous
	// browser and must not carry over.
	c.Session = c.Store.Rotate(c.Session)
	c.CurrentUser = user
	c.Logger.Info().Int("user_id", user.ID).Msg("logged in")
	return c.Redirect(adminurl.BuildDashboard(), http.StatusSeeOther)
}

// Logout always ends up logged out here, even when the backend could not be
// told.
func Logout(c *RequestContext) ResponseData {
	if c.Session != nil {
		c.Session.Logout(c)
	}
	c.CurrentUser = nil
	return c.Redirect(adminurl.BuildLoginPage(), http.StatusSeeOther)
}
