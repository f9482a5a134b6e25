package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrRenewalFailed is an exported constant or variable used by the session kit.
var ErrRenewalFailed = errors.New("credential renewal failed")

// ErrNoBaseURL is an exported constant or variable used by the session kit.
var ErrNoBaseURL = errors.New("transport base url required")

// StatusError carries a non-2xx backend response, including the server-provided
// message so login failures can surface it verbatim for display.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsStatus reports whether err wraps a [StatusError] with the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// statusErrorFrom extracts the display message from an error payload. The
// backend emits either {"message": ...} or {"error": ...}.
func statusErrorFrom(resp *Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		switch {
		case payload.Message != "":
			se.Message = payload.Message
		case payload.Error != "":
			se.Message = payload.Error
		}
	}
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}
