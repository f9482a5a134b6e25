package authkit

import (
	"errors"

	"github.com/basillal/LeadSphere-sub001/transport"
)

var (
	// ErrNotReady is an exported constant or variable used by the session kit.
	ErrNotReady = errors.New("session manager not initialized")
	// ErrNoCredential is an exported constant or variable used by the session kit.
	ErrNoCredential = errors.New("no stored credential")
	// ErrUnauthenticated is an exported constant or variable used by the session kit.
	ErrUnauthenticated = errors.New("session unauthenticated")
	// ErrLoginFailed is an exported constant or variable used by the session kit.
	ErrLoginFailed = errors.New("login failed")
	// ErrProfileFetchFailed is an exported constant or variable used by the session kit.
	ErrProfileFetchFailed = errors.New("session profile fetch failed")
	// ErrClosed is an exported constant or variable used by the session kit.
	ErrClosed = errors.New("session manager closed")

	// ErrRenewalFailed is the transport sentinel re-exported for call sites
	// that never import transport directly.
	ErrRenewalFailed = transport.ErrRenewalFailed
)

// LoginMessage extracts the server-provided display message from a Login error.
// It returns "" when the error carries no backend message (transport failures,
// cancelled contexts).
func LoginMessage(err error) string {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
