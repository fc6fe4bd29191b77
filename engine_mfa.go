package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/mnbara/authkit/mfa"
)

// VerifyChallenge completes a second-factor login. A live challenge for
// (account, device) must exist and the code must verify against the
// account's enrolled secret; only then is the challenge consumed and a
// token pair issued.
//
// A wrong code leaves the challenge intact so the caller can retry until
// the challenge TTL expires. A consumed or expired challenge yields
// [ErrMFAChallengeMissing].
func (e *Engine) VerifyChallenge(ctx context.Context, accountID, deviceID, code, ip string) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if _, err := e.challenges.Get(ctx, accountID, deviceID); err != nil {
		if errors.Is(err, mfa.ErrChallengeNotFound) {
			e.metrics.mfaResult("missing")
			return nil, ErrMFAChallengeMissing
		}
		return nil, e.mapStoreErr(err)
	}

	acct, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrMFAChallengeMissing
		}
		return nil, e.mapAccountErr(err)
	}
	// The account can change state while a challenge is pending; gate
	// again before minting anything.
	if err := CheckLoginEligible(acct, time.Now()); err != nil {
		return nil, err
	}
	if !acct.MFAEnabled || acct.MFASecret == "" {
		return nil, ErrMFAChallengeMissing
	}

	if !e.verifier.Verify(acct.MFASecret, code) {
		e.metrics.mfaResult("failure")
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventMFAFailure,
			AccountID: accountID,
			DeviceID:  deviceID,
			IP:        ip,
			Error:     "code mismatch",
		})
		return nil, ErrMFAInvalidCode
	}

	if err := e.challenges.Consume(ctx, accountID, deviceID); err != nil {
		return nil, e.mapStoreErr(err)
	}

	access, refresh, roles, perms, err := e.issueTokenPair(ctx, acct, deviceID, ip)
	if err != nil {
		return nil, err
	}

	e.metrics.mfaResult("success")
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventMFASuccess,
		AccountID: accountID,
		DeviceID:  deviceID,
		IP:        ip,
		Success:   true,
	})

	return &LoginResult{
		AccountID:    accountID,
		DeviceID:     deviceID,
		AccessToken:  access,
		RefreshToken: refresh,
		Roles:        roles,
		Permissions:  perms,
	}, nil
}
