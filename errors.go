package authkit

import (
	"errors"

	"github.com/mnbara/authkit/password"
	"github.com/mnbara/authkit/token"
)

var (
	// ErrAuthenticationFailed covers both unknown identifiers and wrong
	// secrets. The two cases are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAccountLocked is returned while the lockout window is active.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountBanned is returned for banned accounts.
	ErrAccountBanned = errors.New("account banned")
	// ErrAccountSuspended is returned for suspended accounts.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrUserAlreadyExists is returned when registration collides with an
	// existing username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is the not-found sentinel for account lookups.
	ErrUserNotFound = errors.New("user not found")
	// ErrMFAChallengeMissing is returned when no live second-factor
	// challenge exists for the account and device.
	ErrMFAChallengeMissing = errors.New("mfa challenge missing or expired")
	// ErrMFAInvalidCode is returned when the presented second-factor code
	// does not verify. The challenge stays live until its TTL.
	ErrMFAInvalidCode = errors.New("invalid mfa code")
	// ErrServiceUnavailable marks backend unavailability. Validation paths
	// treat it as a denial, never an allow.
	ErrServiceUnavailable = errors.New("auth backend unavailable")
	// ErrEngineNotReady is returned when an Engine is used before New.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrWeakPassword is the password policy violation sentinel.
	ErrWeakPassword = password.ErrPolicy
	// ErrTokenExpired is the token expiry sentinel.
	ErrTokenExpired = token.ErrExpired
	// ErrTokenInvalid is the bad-signature/bad-issuer sentinel.
	ErrTokenInvalid = token.ErrInvalid
	// ErrTokenRevoked is the blacklisted-token sentinel.
	ErrTokenRevoked = token.ErrRevoked
	// ErrTokenNotFound is the refresh-registry mismatch sentinel.
	ErrTokenNotFound = token.ErrNotFound
)
