package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is an exported constant or variable used by the session kit.
var ErrMalformed = errors.New("malformed bearer token")

// Info holds the advisory claims parsed from a bearer token.
//
// Info instances are intended to be treated as immutable snapshots. A zero
// ExpiresAt means the token carries no expiry claim.
type Info struct {
	Subject   string
	TenantID  string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type accessClaims struct {
	TenantID string `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

// Inspect parses raw without signature verification and returns its advisory
// claims. Tokens the parser cannot read at all yield [ErrMalformed].
func Inspect(raw string) (Info, error) {
	if raw == "" {
		return Info{}, ErrMalformed
	}

	var claims accessClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return Info{}, errors.Join(ErrMalformed, err)
	}

	info := Info{
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}

// ExpiresWithin reports whether the token expires inside the next window.
// Tokens without an expiry claim never report as expiring.
func (i Info) ExpiresWithin(window time.Duration) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(i.ExpiresAt) <= window
}

// Expired reports whether the token's expiry has already passed.
func (i Info) Expired() bool {
	return !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt)
}
