package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Login runs primary authentication: identifier lookup, status and
// lockout gating, password verification, then either a second-factor
// challenge or a token pair.
//
// Unknown identifiers and wrong passwords both return
// [ErrAuthenticationFailed]. Status gating runs before the password is
// even compared, so a banned account with the correct password still
// gets [ErrAccountBanned], and a locked account [ErrAccountLocked].
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	acct, err := e.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.loginResult("failure")
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventLoginFailure,
				IP:        req.IP,
				Error:     "unknown identifier",
			})
			return nil, ErrAuthenticationFailed
		}
		return nil, e.mapAccountErr(err)
	}

	if err := CheckLoginEligible(acct, time.Now()); err != nil {
		e.metrics.loginResult("rejected")
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLoginRejected,
			AccountID: acct.ID,
			IP:        req.IP,
			Error:     err.Error(),
		})
		return nil, err
	}

	ok, verr := e.hasher.Verify(req.Password, acct.PasswordHash)
	if verr != nil || !ok {
		// Response is the generic failure regardless of what happens to
		// the counter write.
		if ferr := e.recordLoginFailure(ctx, acct.ID); ferr != nil {
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventLoginFailure,
				AccountID: acct.ID,
				IP:        req.IP,
				Error:     "failure count not persisted: " + ferr.Error(),
			})
		} else {
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventLoginFailure,
				AccountID: acct.ID,
				IP:        req.IP,
				Error:     "bad credentials",
			})
		}
		e.metrics.loginResult("failure")
		return nil, ErrAuthenticationFailed
	}

	if err := e.recordLoginSuccess(ctx, acct, req.IP); err != nil {
		return nil, e.mapAccountErr(err)
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	if acct.MFAEnabled {
		handle, err := e.challenges.Issue(ctx, acct.ID, deviceID)
		if err != nil {
			return nil, e.mapStoreErr(err)
		}
		e.metrics.loginResult("mfa_required")
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventChallengeIssued,
			AccountID: acct.ID,
			DeviceID:  deviceID,
			IP:        req.IP,
			Success:   true,
		})
		return &LoginResult{
			AccountID:       acct.ID,
			DeviceID:        deviceID,
			MFARequired:     true,
			ChallengeHandle: handle,
		}, nil
	}

	access, refresh, roles, perms, err := e.issueTokenPair(ctx, acct, deviceID, req.IP)
	if err != nil {
		return nil, err
	}

	e.metrics.loginResult("success")
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventLoginSuccess,
		AccountID: acct.ID,
		DeviceID:  deviceID,
		IP:        req.IP,
		Success:   true,
	})

	return &LoginResult{
		AccountID:    acct.ID,
		DeviceID:     deviceID,
		AccessToken:  access,
		RefreshToken: refresh,
		Roles:        roles,
		Permissions:  perms,
	}, nil
}
