package authkit

import (
	"errors"
	"time"

	"github.com/mnbara/authkit/mfa"
	"github.com/mnbara/authkit/password"
	"github.com/mnbara/authkit/token"
)

// Defaults applied by [Config.withDefaults] for any zero field.
const (
	DefaultAccessTTL         = 15 * time.Minute
	DefaultRefreshTTL        = 7 * 24 * time.Hour
	DefaultMaxFailedAttempts = 5
	DefaultLockDuration      = 15 * time.Minute
)

// JWTConfig holds signing material and lifetimes for both token kinds.
// The two secrets must be distinct: compromise of one kind must not
// allow forging the other.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// LockoutConfig controls the failed-login lockout window.
type LockoutConfig struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
}

// MFAConfig controls the second-factor challenge lifetime.
type MFAConfig struct {
	ChallengeTTL time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher. With
// DropIfFull set, a full buffer drops events and counts them instead of
// applying backpressure to login paths.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls Prometheus instrumentation. When disabled the
// engine records nothing and registers nothing.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// Config is the complete engine configuration. The zero value is not
// usable: JWT secrets and an issuer are required; everything else has a
// default.
type Config struct {
	JWT      JWTConfig
	Lockout  LockoutConfig
	MFA      MFAConfig
	Password password.Config
	Audit    AuditConfig
	Metrics  MetricsConfig
}

func (c Config) withDefaults() Config {
	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = DefaultAccessTTL
	}
	if c.JWT.RefreshTTL <= 0 {
		c.JWT.RefreshTTL = DefaultRefreshTTL
	}
	if c.Lockout.MaxFailedAttempts <= 0 {
		c.Lockout.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if c.Lockout.LockDuration <= 0 {
		c.Lockout.LockDuration = DefaultLockDuration
	}
	if c.MFA.ChallengeTTL <= 0 {
		c.MFA.ChallengeTTL = mfa.DefaultChallengeTTL
	}
	if c.Password == (password.Config{}) {
		c.Password = password.DefaultConfig()
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = 256
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "authkit"
	}
	return c
}

// Validate reports the first configuration problem, if any. [New] calls
// it after defaults are applied; it is exported for callers that build
// configuration from external sources and want early feedback.
func (c Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("jwt secrets must not be empty")
	}
	if c.JWT.Issuer == "" {
		return errors.New("jwt issuer must not be empty")
	}
	// NewService rechecks secrets and TTLs; surface its complaints here
	// too so Validate alone is sufficient.
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	return nil
}

func (c Config) tokenConfig() token.Config {
	return token.Config{
		AccessSecret:  c.JWT.AccessSecret,
		RefreshSecret: c.JWT.RefreshSecret,
		Issuer:        c.JWT.Issuer,
		AccessTTL:     c.JWT.AccessTTL,
		RefreshTTL:    c.JWT.RefreshTTL,
	}
}
