package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mnbara/authkit/kv"
	"github.com/mnbara/authkit/mfa"
	"github.com/mnbara/authkit/password"
	"github.com/mnbara/authkit/rbac"
	"github.com/mnbara/authkit/token"
)

// Deps are the external collaborators the engine composes. KV, Accounts,
// and Roles are required; the rest default to no-op or built-in
// implementations.
type Deps struct {
	KV       kv.Store
	Accounts AccountStore
	Roles    RoleStore

	Notifier NotificationSender
	Verifier CodeVerifier
	Audit    AuditSink

	MetricsRegisterer prometheus.Registerer
}

// Engine is the session-credential core: primary authentication with
// lockout, second-factor challenges, token issuance, validation, and
// revocation. All ephemeral state lives in the shared kv store, so any
// number of engine instances can serve the same accounts.
type Engine struct {
	config Config

	accounts AccountStore
	roles    RoleStore
	notifier NotificationSender
	verifier CodeVerifier

	tokens     *token.Service
	challenges *mfa.ChallengeStore
	hasher     *password.Hasher

	audit   *auditDispatcher
	metrics *Metrics

	accountLocks stripedMutex
}

// New validates cfg, applies defaults, and wires an [Engine].
func New(cfg Config, deps Deps) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.KV == nil {
		return nil, errors.New("engine requires a kv store")
	}
	if deps.Accounts == nil {
		return nil, errors.New("engine requires an account store")
	}
	if deps.Roles == nil {
		return nil, errors.New("engine requires a role store")
	}

	tokens, err := token.NewService(cfg.tokenConfig(), deps.KV)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	verifier := deps.Verifier
	if verifier == nil {
		verifier = mfa.NewTOTPVerifier()
	}

	return &Engine{
		config:     cfg,
		accounts:   deps.Accounts,
		roles:      deps.Roles,
		notifier:   deps.Notifier,
		verifier:   verifier,
		tokens:     tokens,
		challenges: mfa.NewChallengeStore(deps.KV, cfg.MFA.ChallengeTTL),
		hasher:     hasher,
		audit:      newAuditDispatcher(cfg.Audit, deps.Audit),
		metrics:    newMetrics(cfg.Metrics, deps.MetricsRegisterer),
	}, nil
}

// Close flushes the audit dispatcher. The engine holds no other
// background resources.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded under
// DropIfFull.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	return nil
}

// mapStoreErr translates kv-layer unavailability into the public
// sentinel; everything else passes through unchanged.
func (e *Engine) mapStoreErr(err error) error {
	if errors.Is(err, kv.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return err
}

// mapAccountErr translates account/role-store failures. ErrUserNotFound
// is the only error those stores may surface as-is; anything else is a
// backend outage and comes back as [ErrServiceUnavailable].
func (e *Engine) mapAccountErr(err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.audit.Emit(ctx, event)
}

// findByIdentifier resolves a login identifier as a username first, then
// as an email address.
func (e *Engine) findByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	acct, err := e.accounts.FindByUsername(ctx, identifier)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return e.accounts.FindByEmail(ctx, identifier)
}

// issueTokenPair resolves the account's roles and signs an access and a
// refresh token for the device.
func (e *Engine) issueTokenPair(ctx context.Context, acct *Account, deviceID, ip string) (access, refresh string, roles, perms []string, err error) {
	assigned, err := e.roles.LoadAssignedRoles(ctx, acct.ID)
	if err != nil {
		return "", "", nil, nil, e.mapAccountErr(err)
	}
	roles, perms = rbac.Resolve(assigned)

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

	access, err = e.tokens.IssueAccessToken(ctx, identity, deviceID, ip)
	if err != nil {
		return "", "", nil, nil, e.mapStoreErr(err)
	}
	e.metrics.tokenIssued("access")

	refresh, err = e.tokens.IssueRefreshToken(ctx, identity, deviceID, ip)
	if err != nil {
		return "", "", nil, nil, e.mapStoreErr(err)
	}
	e.metrics.tokenIssued("refresh")

	return access, refresh, roles, perms, nil
}
