package pms

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotConfigured = errors.New("pms: credentials are not configured")
	ErrUnauthorized  = errors.New("pms: authentication failed after re-login")
	ErrEmptyToken    = errors.New("pms: login returned no access token")
)

// StatusError is a non-2xx answer from the PMS.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("pms: %s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func IsStatusError(err error) *StatusError {
	var target *StatusError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

func isAuthFailure(err error) bool {
	se := IsStatusError(err)
	return se != nil && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
