package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is matched by errors.Is for any 404 response
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response from the API
type Error struct {
	StatusCode int
	Detail     string // "detail" field of the JSON error body, if any
	Body       string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Body != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// newError builds an Error from a response body, pulling out {"detail": "..."} when present
func newError(status int, body []byte) *Error {
	apiErr := &Error{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
