package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mnbara/authkit/password"
)

// Register creates an account in PENDING_VERIFICATION, fires the
// verification mail best-effort, and issues an initial token pair.
// Username and email must both be unused; the password must satisfy the
// complexity policy.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if _, err := e.accounts.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, e.mapAccountErr(err)
	}
	if _, err := e.accounts.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, e.mapAccountErr(err)
	}

	if err := password.ValidatePolicy(req.Password); err != nil {
		return nil, err
	}
	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	acct := &Account{
		ID:                uuid.NewString(),
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      hash,
		Status:            StatusPendingVerification,
		PasswordChangedAt: time.Now(),
	}
	if err := e.accounts.Create(ctx, acct); err != nil {
		return nil, e.mapAccountErr(err)
	}

	if e.notifier != nil {
		// Fire and forget: delivery failure never blocks registration.
		go e.notifier.SendVerificationEmail(context.WithoutCancel(ctx), acct.Email, acct.Username)
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	access, refresh, roles, perms, err := e.issueTokenPair(ctx, acct, deviceID, req.IP)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventRegister,
		AccountID: acct.ID,
		DeviceID:  deviceID,
		IP:        req.IP,
		Success:   true,
	})

	return &RegisterResult{
		AccountID:    acct.ID,
		DeviceID:     deviceID,
		AccessToken:  access,
		RefreshToken: refresh,
		Roles:        roles,
		Permissions:  perms,
	}, nil
}
