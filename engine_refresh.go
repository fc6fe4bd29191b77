package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/mnbara/authkit/kv"
	"github.com/mnbara/authkit/rbac"
	"github.com/mnbara/authkit/token"
)

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is not rotated: it stays registered and usable
// until its own expiry or revocation. Roles and permissions are
// re-resolved from the stores, so the new access token reflects grants
// made since login, and the ip claim is stamped with the caller's
// current address, not the login-time one.
func (e *Engine) Refresh(ctx context.Context, refreshToken, ip string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	claims, err := e.tokens.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		e.metrics.refreshResult("failure")
		return "", e.mapStoreErr(err)
	}

	acct, err := e.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		e.metrics.refreshResult("failure")
		return "", e.mapAccountErr(err)
	}
	if err := CheckLoginEligible(acct, time.Now()); err != nil {
		e.metrics.refreshResult("failure")
		return "", err
	}

	access, err := e.issueAccessOnly(ctx, acct, claims.DeviceID, ip)
	if err != nil {
		e.metrics.refreshResult("failure")
		return "", err
	}

	e.metrics.refreshResult("success")
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventRefresh,
		AccountID: acct.ID,
		DeviceID:  claims.DeviceID,
		IP:        ip,
		Success:   true,
	})

	return access, nil
}

// issueAccessOnly mirrors issueTokenPair but leaves the refresh registry
// untouched.
func (e *Engine) issueAccessOnly(ctx context.Context, acct *Account, deviceID, ip string) (string, error) {
	assigned, err := e.roles.LoadAssignedRoles(ctx, acct.ID)
	if err != nil {
		return "", e.mapAccountErr(err)
	}
	roles, perms := rbac.Resolve(assigned)

	identity := token.Identity{
		AccountID:     acct.ID,
		Username:      acct.Username,
		Email:         acct.Email,
		Roles:         roles,
		Permissions:   perms,
		MFAEnabled:    acct.MFAEnabled,
		EmailVerified: acct.EmailVerified,
		KYCVerified:   acct.KYCVerified,
	}

	access, err := e.tokens.IssueAccessToken(ctx, identity, deviceID, ip)
	if err != nil {
		return "", e.mapStoreErr(err)
	}
	e.metrics.tokenIssued("access")

	return access, nil
}

// ValidateAccess verifies an access token end to end: signature, issuer,
// expiry, token type, and the revocation blacklist. Store unavailability
// is a denial ([ErrServiceUnavailable]), never an allow.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (*token.AccessClaims, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	claims, err := e.tokens.ValidateAccess(ctx, accessToken)
	if err != nil {
		if errors.Is(err, kv.ErrUnavailable) {
			return nil, e.mapStoreErr(err)
		}
		return nil, err
	}
	return claims, nil
}
