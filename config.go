package authkit

import (
	"errors"
	"strings"
	"time"

	"github.com/basillal/LeadSphere-sub001/transport"
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type Config struct {
	Endpoints EndpointConfig
	Tenant    TenantConfig
	Renewal   RenewalConfig
	Loader    LoaderConfig
	Access    AccessConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig defines a public type used by authkit APIs.
//
// Paths are joined onto BaseURL. The defaults mirror the backend auth surface
// under /api/auth.
type EndpointConfig struct {
	BaseURL string
	Login   string
	Logout  string
	Profile string
	Renew   string
}

/*
====================================
TENANT CONFIG
====================================
*/

// TenantConfig defines a public type used by authkit APIs.
//
// The query parameter mirrors the header for read endpoints that predate the
// header convention.
type TenantConfig struct {
	HeaderName string
	QueryParam string
}

/*
====================================
RENEWAL CONFIG
====================================
*/

// RenewalConfig defines a public type used by authkit APIs.
type RenewalConfig struct {
	// ShareInFlight collapses concurrent renewal attempts onto a single
	// in-flight request that all waiters await. Disabling it restores the
	// legacy one-renewal-per-failed-call behavior.
	ShareInFlight bool
	// EarlyWindow renews a stored token during Bootstrap when it expires
	// within the window. Zero disables early renewal.
	EarlyWindow time.Duration
}

/*
====================================
LOADER CONFIG
====================================
*/

// LoaderConfig defines a public type used by authkit APIs.
type LoaderConfig struct {
	Enabled bool
}

/*
====================================
ACCESS CONFIG
====================================
*/

// AccessConfig defines a public type used by authkit APIs.
type AccessConfig struct {
	// SuperRole is the distinguished role name that bypasses permission
	// checks. Empty selects the platform default.
	SuperRole string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authkit APIs.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authkit APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Endpoints: EndpointConfig{
			Login:   "/api/auth/login",
			Logout:  "/api/auth/logout",
			Profile: "/api/auth/me",
			Renew:   transport.DefaultRenewPath,
		},
		Tenant: TenantConfig{
			HeaderName: transport.DefaultTenantHeader,
			QueryParam: transport.DefaultTenantParam,
		},
		Renewal: RenewalConfig{
			ShareInFlight: true,
			EarlyWindow:   30 * time.Second,
		},
		Loader: LoaderConfig{
			Enabled: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the production defaults documented on each section.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// All sections are value types; a struct copy is a deep copy.
	return cfg
}

// Validate checks hard bounds. It is called by [Builder.Build]; direct callers
// only need it when assembling a Config by hand.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoints.BaseURL) == "" {
		return errors.New("Endpoints.BaseURL required")
	}
	for _, p := range []struct {
		name, value string
	}{
		{"Login", c.Endpoints.Login},
		{"Logout", c.Endpoints.Logout},
		{"Profile", c.Endpoints.Profile},
		{"Renew", c.Endpoints.Renew},
	} {
		if !strings.HasPrefix(p.value, "/") {
			return errors.New("Endpoints." + p.name + " must be an absolute path")
		}
	}
	if c.Endpoints.Renew == c.Endpoints.Login {
		return errors.New("Endpoints.Renew must differ from Endpoints.Login")
	}
	if c.Renewal.EarlyWindow < 0 || c.Renewal.EarlyWindow > time.Hour {
		return errors.New("Renewal.EarlyWindow out of range")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
