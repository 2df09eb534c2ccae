package website

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/templates"
)

const (
	msgGenericError   = "เกิดข้อผิดพลาด กรุณาลองใหม่อีกครั้ง"
	msgSessionExpired = "เซสชันหมดอายุ กรุณาเข้าสู่ระบบอีกครั้ง"
)

func FourOhFour(c *RequestContext) ResponseData {
	var res ResponseData
	res.StatusCode = http.StatusNotFound

	if c.Req.Header["Accept"] != nil && strings.Contains(c.Req.Header["Accept"][0], "text/html") {
		templateData := struct {
			templates.BaseData
			Wanted       string
			DashboardUrl string
		}{
			BaseData:     getBaseData(c, "ไม่พบข้อมูล"),
			Wanted:       c.FullUrl(),
			DashboardUrl: adminurl.BuildDashboard(),
		}
		res.MustWriteTemplate("404.html", templateData, c.Perf)
	} else {
		res.Write([]byte("Not Found"))
	}
	return res
}

// A SafeError can be used to wrap another error and explicitly provide
// an error message that is safe to show to a user. This allows the original
// error to easily be logged and for servers to consistently return errors
// in a standard format, without having to worry about leaking sensitive
// info (assuming you use the right middleware!).
type SafeError struct {
	Wrapped error
	Msg     string
}

func NewSafeError(err error, msg string, args ...interface{}) error {
	return &SafeError{
		Wrapped: err,
		Msg:     fmt.Sprintf(msg, args...),
	}
}

func (s *SafeError) Error() string {
	return s.Msg
}

func (s *SafeError) Unwrap() error {
	return s.Wrapped
}

// errorMessage picks what the error page tells the user: the first safe
// message, or a generic one.
func errorMessage(errs ...error) string {
	for _, err := range errs {
		var safe *SafeError
		if errors.As(err, &safe) {
			return safe.Msg
		}
	}
	return msgGenericError
}
