package guard

import (
	authkit "github.com/basillal/LeadSphere-sub001"
	"github.com/basillal/LeadSphere-sub001/access"
)

// Default routes used when no option overrides them.
const (
	DefaultLoginRoute = "/login"
	DefaultHomeRoute  = "/"
)

// SessionSource is the read-only view of the session a guard evaluates.
// *authkit.Manager satisfies it.
type SessionSource interface {
	BootstrapDone() bool
	Session() authkit.Session
	Evaluator() access.Evaluator
}

// Decision is the outcome of a guard check. Exactly one of the three shapes
// applies: Allowed renders the route, Pending holds rendering until bootstrap
// resolves, a non-empty Redirect sends the user elsewhere. The zero value
// denies without redirecting (render nothing).
type Decision struct {
	Allowed  bool
	Pending  bool
	Redirect string
}

// Denied reports a plain denial: not allowed, not pending, nowhere to go.
func (d Decision) Denied() bool {
	return !d.Allowed && !d.Pending && d.Redirect == ""
}

// Guard defines a public type used by authkit APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	loginRoute string
	homeRoute  string
}

// Option configures a Guard.
type Option func(*Guard)

// WithLoginRoute overrides the redirect target for unauthenticated sessions.
func WithLoginRoute(route string) Option {
	return func(g *Guard) { g.loginRoute = route }
}

// WithHomeRoute overrides the default fallback for failed role checks.
func WithHomeRoute(route string) Option {
	return func(g *Guard) { g.homeRoute = route }
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(opts ...Option) *Guard {
	g := &Guard{
		loginRoute: DefaultLoginRoute,
		homeRoute:  DefaultHomeRoute,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Auth describes the auth operation and its observable behavior.
//
// Auth does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// While bootstrap is unresolved the decision is Pending, never a redirect: a
// user with a valid stored credential must not bounce through the login route
// during startup.
func (g *Guard) Auth(src SessionSource) Decision {
	if !src.BootstrapDone() {
		return Decision{Pending: true}
	}
	if !src.Session().IsAuthenticated() {
		return Decision{Redirect: g.loginRoute}
	}
	return Decision{Allowed: true}
}

// Role describes the role operation and its observable behavior.
//
// Role does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Role composes with Auth: pending and unauthenticated outcomes pass through
// unchanged. A session whose role does not literally match redirects to the
// fallback route, or the home route when none is given. The super role gets no
// special treatment here.
func (g *Guard) Role(src SessionSource, role string, fallback ...string) Decision {
	if d := g.Auth(src); !d.Allowed {
		return d
	}
	if !src.Evaluator().HasRole(src.Session().User.Role, role) {
		to := g.homeRoute
		if len(fallback) > 0 && fallback[0] != "" {
			to = fallback[0]
		}
		return Decision{Redirect: to}
	}
	return Decision{Allowed: true}
}

// Permission describes the permission operation and its observable behavior.
//
// Permission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Permission composes with Auth. A missing permission denies without a
// redirect: the route simply renders nothing.
func (g *Guard) Permission(src SessionSource, permission string) Decision {
	if d := g.Auth(src); !d.Allowed {
		return d
	}
	if !src.Evaluator().HasPermission(src.Session().User.Role, permission) {
		return Decision{}
	}
	return Decision{Allowed: true}
}
