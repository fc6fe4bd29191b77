package authkit

import "context"

// Logout revokes credentials best-effort. The access token is
// blacklisted for its remaining lifetime; if a refresh token is supplied
// and validates, its registry entry for the device is deleted. With
// allDevices set, every tracked access token and refresh registration
// for the account is revoked instead.
//
// Logout never returns an error. An undecodable token, an unreachable
// store, an already-revoked token: the caller is logging out either way,
// and failures are visible only through audit events.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string, allDevices bool) {
	if e == nil || e.tokens == nil {
		return
	}

	claims, err := e.tokens.DecodeAccess(accessToken)
	if err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogout,
			Error:     "access token undecodable",
		})
		return
	}

	if allDevices {
		if err := e.tokens.RevokeAllForAccount(ctx, claims.Subject); err != nil {
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventRevokeAll,
				AccountID: claims.Subject,
				Error:     err.Error(),
			})
			return
		}
		e.metrics.logout()
		e.metrics.revoked("account")
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventRevokeAll,
			AccountID: claims.Subject,
			Success:   true,
		})
		return
	}

	if err := e.tokens.Blacklist(ctx, accessToken); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogout,
			AccountID: claims.Subject,
			DeviceID:  claims.DeviceID,
			Error:     err.Error(),
		})
	} else {
		e.metrics.revoked("token")
	}

	if refreshToken != "" {
		if rc, err := e.tokens.ValidateRefresh(ctx, refreshToken); err == nil {
			if err := e.tokens.RevokeDevice(ctx, rc.Subject, rc.DeviceID); err == nil {
				e.metrics.revoked("device")
			}
		}
	}

	e.metrics.logout()
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventLogout,
		AccountID: claims.Subject,
		DeviceID:  claims.DeviceID,
		Success:   true,
	})
}
