package authkit

import (
	"context"
	"time"

	"github.com/mnbara/authkit/rbac"
)

// AccountStatus is the lifecycle state of an account. Status gating runs
// before any credential check, so a banned account never gets as far as
// a password comparison.
type AccountStatus uint8

const (
	StatusPendingVerification AccountStatus = iota
	StatusActive
	StatusSuspended
	StatusBanned
	StatusExpired
	StatusInactive
)

// String returns the canonical wire spelling of the status.
func (s AccountStatus) String() string {
	switch s {
	case StatusPendingVerification:
		return "PENDING_VERIFICATION"
	case StatusActive:
		return "ACTIVE"
	case StatusSuspended:
		return "SUSPENDED"
	case StatusBanned:
		return "BANNED"
	case StatusExpired:
		return "EXPIRED"
	case StatusInactive:
		return "INACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Account is the durable security record the engine operates on. The
// engine owns the security fields (status, failed attempts, lock-until,
// last-login); everything else is caller data passed through to token
// claims.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Status       AccountStatus

	EmailVerified bool
	PhoneVerified bool
	KYCVerified   bool

	MFAEnabled bool
	MFASecret  string

	FailedLoginAttempts int
	LockedUntil         *time.Time

	PasswordChangedAt time.Time
	LastLoginAt       *time.Time
	LastLoginIP       string
}

// AccountStore is the durable backend for accounts. Lookups return
// [ErrUserNotFound] when no account matches; any other error is treated
// as backend unavailability.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, acct *Account) error
	Save(ctx context.Context, acct *Account) error
}

// RoleStore loads the roles assigned to an account, with permissions
// attached. Resolution to flat name lists happens in the engine via
// [rbac.Resolve].
type RoleStore interface {
	LoadAssignedRoles(ctx context.Context, accountID string) ([]rbac.Role, error)
}

// CodeVerifier checks a second-factor code against an account's enrolled
// secret. The default implementation is [mfa.TOTPVerifier].
type CodeVerifier interface {
	Verify(secret, code string) bool
}

// NotificationSender delivers out-of-band account mail. The engine
// invokes it on its own goroutine and never awaits or inspects the
// outcome.
type NotificationSender interface {
	SendVerificationEmail(ctx context.Context, email, username string)
	SendPasswordResetEmail(ctx context.Context, email, resetToken string)
}

// RegisterRequest carries the inputs for account creation.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	DeviceID string
	IP       string
}

// RegisterResult is returned on successful registration. The account
// starts in PENDING_VERIFICATION but receives a token pair immediately.
type RegisterResult struct {
	AccountID    string
	DeviceID     string
	AccessToken  string
	RefreshToken string
	Roles        []string
	Permissions  []string
}

// LoginRequest carries the inputs for primary authentication.
// Identifier may be a username or an email address.
type LoginRequest struct {
	Identifier string
	Password   string
	DeviceID   string
	IP         string
}

// LoginResult is the outcome of a successful primary authentication.
// When MFARequired is set, no tokens are present: the caller must
// complete [Engine.VerifyChallenge] with the same account and device
// before the challenge TTL runs out.
type LoginResult struct {
	AccountID string
	DeviceID  string

	MFARequired     bool
	ChallengeHandle string

	AccessToken  string
	RefreshToken string
	Roles        []string
	Permissions  []string
}
