package authkit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// CheckLoginEligible reports whether an account may attempt primary
// authentication at now. Status is checked before any credential: a
// banned or suspended account fails without a secret comparison, and a
// locked account fails even with the correct password.
func CheckLoginEligible(acct *Account, now time.Time) error {
	switch acct.Status {
	case StatusBanned:
		return ErrAccountBanned
	case StatusSuspended:
		return ErrAccountSuspended
	}
	if acct.LockedUntil != nil && acct.LockedUntil.After(now) {
		return ErrAccountLocked
	}
	return nil
}

const lockStripes = 64

// stripedMutex serializes the read-modify-write on a single account's
// failed-attempt counter without a global lock. Two accounts hashing to
// the same stripe contend harmlessly.
type stripedMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (m *stripedMutex) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// recordLoginFailure increments the account's failed-attempt counter and
// arms the lockout window once the counter reaches the configured
// threshold. The counter keeps incrementing past the threshold; only a
// successful login resets it.
func (e *Engine) recordLoginFailure(ctx context.Context, accountID string) error {
	unlock := e.accountLocks.lock(accountID)
	defer unlock()

	acct, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	acct.FailedLoginAttempts++
	if acct.FailedLoginAttempts >= e.config.Lockout.MaxFailedAttempts {
		until := time.Now().Add(e.config.Lockout.LockDuration)
		acct.LockedUntil = &until
	}

	return e.accounts.Save(ctx, acct)
}

// recordLoginSuccess resets the failure counter, clears any lockout, and
// stamps the last-login fields. Runs after the primary credential
// verifies, before any second-factor gate.
func (e *Engine) recordLoginSuccess(ctx context.Context, acct *Account, ip string) error {
	unlock := e.accountLocks.lock(acct.ID)
	defer unlock()

	now := time.Now()
	acct.FailedLoginAttempts = 0
	acct.LockedUntil = nil
	acct.LastLoginAt = &now
	acct.LastLoginIP = ip

	return e.accounts.Save(ctx, acct)
}
