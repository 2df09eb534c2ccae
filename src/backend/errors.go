package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ResponseError is a non-2xx answer from the backend. Message is the
// backend's own "message" field, which is written for end users.
type ResponseError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

func readResponseError(res *http.Response) *ResponseError {
	resErr := &ResponseError{StatusCode: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
	if err != nil || len(body) == 0 {
		return resErr
	}

	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		resErr.Message = payload.Message
		resErr.Fields = payload.Errors
	}
	return resErr
}

// StatusSessionExpired is Laravel's "page expired" status, sent when the
// session or CSRF token is no longer valid.
const StatusSessionExpired = 419

// IsUnauthorized reports whether the backend rejected the session itself,
// as opposed to the particular request.
func IsUnauthorized(err error) bool {
	var resErr *ResponseError
	if errors.As(err, &resErr) {
		return resErr.StatusCode == http.StatusUnauthorized || resErr.StatusCode == StatusSessionExpired
	}
	return false
}

func IsNotFound(err error) bool {
	var resErr *ResponseError
	return errors.As(err, &resErr) && resErr.StatusCode == http.StatusNotFound
}

// UserMessage is the text to show next to the control that triggered err:
// the backend's message when it sent one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var resErr *ResponseError
	if errors.As(err, &resErr) && resErr.Message != "" {
		return resErr.Message
	}
	return fallback
}
