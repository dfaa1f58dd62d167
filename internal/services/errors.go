package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/amarshop/internal/models"
)

var (
	// ErrTransport means the backend could not be reached.
	ErrTransport = errors.New("backend unreachable")
	// ErrMalformed means the backend answered with an unexpected body.
	ErrMalformed = errors.New("malformed backend response")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status  int
	Message string
	Code    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

// EnvelopeError is a 2xx answer whose envelope reports ok:false.
type EnvelopeError struct {
	Message string
	Code    string
	Errors  []models.FieldError
}

func (e *EnvelopeError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = "request rejected"
	}
	return "backend: " + msg
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// IsUnauthorized reports whether the backend rejected the access token.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized
	}
	var ee *EnvelopeError
	if errors.As(err, &ee) {
		return ee.Code == "UNAUTHORIZED" || ee.Code == "TOKEN_EXPIRED" || ee.Code == "INVALID_TOKEN"
	}
	return false
}

// IsCanceled reports whether err comes from a cancelled or superseded call.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Message turns err into the sentence shown on the page.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ee *EnvelopeError
	if errors.As(err, &ee) {
		if len(ee.Errors) > 0 {
			msgs := make([]string, 0, len(ee.Errors))
			for _, fe := range ee.Errors {
				msgs = append(msgs, fe.Message)
			}
			return strings.Join(msgs, ", ")
		}
		if ee.Message != "" {
			return ee.Message
		}
		if ee.Code != "" {
			return ee.Code
		}
		return fallback
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return fmt.Sprintf("%s (%d): %s", fallback, se.Status, se.Message)
		}
		return fmt.Sprintf("%s (%d)", fallback, se.Status)
	}

	switch {
	case errors.Is(err, ErrTransport):
		return "Could not reach the store server. Please check your connection."
	case errors.Is(err, ErrMalformed):
		return fallback + ": unexpected response from server"
	case errors.Is(err, context.DeadlineExceeded):
		return "The store server took too long to respond."
	}
	return fallback
}
