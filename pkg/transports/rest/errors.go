package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/launchwolf/launchwolf/pkg/engine"
)

// APIError is a non-2xx response from a provider API.
type APIError struct {
	Provider   string
	Operation  string
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %s %s returned %s", e.Provider, e.Operation, e.Method, e.URL, e.Status)
	if m := e.Message(); m != "" {
		msg += ": " + m
	}
	return msg
}

// Message extracts a human-readable message from the response body. Gandi,
// Netlify and Mailjet all use one of the fields below.
func (e *APIError) Message() string {
	var body struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"ErrorMessage"`
		Cause        string `json:"cause"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.ErrorMessage != "":
			return body.ErrorMessage
		case body.Cause != "":
			return body.Cause
		}
	}
	s := strings.TrimSpace(string(e.Body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// classify wraps e in an engine error carrying its class and code.
func (e *APIError) classify() error {
	msg := fmt.Sprintf("%s request failed", e.Operation)

	var engErr *engine.EngineError
	switch engine.ClassifyHTTPStatus(e.StatusCode) {
	case engine.ErrorClassTransient:
		engErr = engine.NewTransientError(msg, e)
	case engine.ErrorClassThrottled:
		engErr = engine.NewThrottledError(msg, e)
	case engine.ErrorClassConflict:
		engErr = engine.NewConflictError(msg, e)
	default:
		engErr = engine.NewPermanentError(msg, e)
	}

	return engErr.
		WithProvider(e.Provider).
		WithCode(engine.CodeForHTTPStatus(e.StatusCode)).
		WithDetail("status", e.StatusCode)
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == status
}
