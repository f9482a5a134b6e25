package authkit

import (
	"io"

	"github.com/basillal/LeadSphere-sub001/access"
	"github.com/basillal/LeadSphere-sub001/credstore"
	internalaudit "github.com/basillal/LeadSphere-sub001/internal/audit"
)

// User is the immutable account snapshot returned by the session-profile
// endpoint. It is replaced wholesale on login and bootstrap, never patched
// field-by-field.
type User struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  *access.Role `json:"role"`
}

// Session defines a public type used by authkit APIs.
//
// Session is the in-memory record of the currently authenticated user. It is
// owned exclusively by the [Manager] and mutated only through Login, Logout,
// and Bootstrap. A Session is authenticated iff User is non-nil.
type Session struct {
	User     *User
	TenantID string
}

// IsAuthenticated reports whether the session holds a user.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// Credential is the persisted bearer token proving the session to the backend.
type Credential = credstore.Credential

// Navigator is the view layer's redirect contract. The Manager forces
// navigation on logout and on unrecoverable renewal failure; everything else
// stays a guard decision.
type Navigator interface {
	NavigateToLogin()
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func()

// NavigateToLogin calls the wrapped function.
func (f NavigatorFunc) NavigateToLogin() { f() }

// AuditEvent is a structured audit record emitted by the manager.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the manager's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// loginResponse is the login endpoint payload: the fresh credential plus the
// user fields inlined beside it.
type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        *access.Role `json:"role"`
}

func (r loginResponse) user() *User {
	return &User{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Role:  r.Role,
	}
}
