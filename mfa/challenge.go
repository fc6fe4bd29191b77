package mfa

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mnbara/authkit/kv"
)

// ErrChallengeNotFound is returned when no live challenge exists for the
// (account, device) pair — never issued, already consumed, or expired.
var ErrChallengeNotFound = errors.New("mfa challenge not found")

// DefaultChallengeTTL is the challenge lifetime when none is configured.
const DefaultChallengeTTL = 5 * time.Minute

// ChallengeStore manages second-factor challenge handles in the shared
// ephemeral store, keyed as mfa_token:{accountId}:{deviceId}. At most
// one challenge is live per pair; issuing again overwrites.
type ChallengeStore struct {
	store kv.Store
	ttl   time.Duration
}

// NewChallengeStore creates a [ChallengeStore]. ttl <= 0 selects
// [DefaultChallengeTTL].
func NewChallengeStore(store kv.Store, ttl time.Duration) *ChallengeStore {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeStore{
		store: store,
		ttl:   ttl,
	}
}

func challengeKey(accountID, deviceID string) string {
	return "mfa_token:" + accountID + ":" + deviceID
}

// Issue writes a fresh challenge for (account, device) and returns its
// opaque handle. Execution of the login flow stops here until the second
// factor is verified or the challenge expires.
func (s *ChallengeStore) Issue(ctx context.Context, accountID, deviceID string) (string, error) {
	handle := uuid.NewString()
	if err := s.store.SetWithTTL(ctx, challengeKey(accountID, deviceID), handle, s.ttl); err != nil {
		return "", err
	}
	return handle, nil
}

// Get returns the live challenge handle for (account, device), or
// [ErrChallengeNotFound].
func (s *ChallengeStore) Get(ctx context.Context, accountID, deviceID string) (string, error) {
	handle, err := s.store.Get(ctx, challengeKey(accountID, deviceID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", ErrChallengeNotFound
		}
		return "", err
	}
	return handle, nil
}

// Consume deletes the challenge after successful verification, making it
// single-use.
func (s *ChallengeStore) Consume(ctx context.Context, accountID, deviceID string) error {
	return s.store.Delete(ctx, challengeKey(accountID, deviceID))
}
