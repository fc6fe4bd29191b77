package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mnbara/authkit"
)

// AccountStore implements authkit.AccountStore against the accounts
// table. Lookups map pgx.ErrNoRows to authkit.ErrUserNotFound.
type AccountStore struct {
	db *pgxpool.Pool
}

func NewAccountStore(db *pgxpool.Pool) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, username, email, password_hash, status,
	email_verified, phone_verified, kyc_verified,
	mfa_enabled, mfa_secret,
	failed_login_attempts, locked_until,
	password_changed_at, last_login_at, last_login_ip`

func (s *AccountStore) FindByID(ctx context.Context, id string) (*authkit.Account, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*authkit.Account, error) {
	return s.findOne(ctx, `WHERE username = $1`, username)
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*authkit.Account, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *AccountStore) findOne(ctx context.Context, where string, arg any) (*authkit.Account, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts `+where, arg)

	var (
		acct   authkit.Account
		status string
		ip     *string
	)
	err := row.Scan(
		&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &status,
		&acct.EmailVerified, &acct.PhoneVerified, &acct.KYCVerified,
		&acct.MFAEnabled, &acct.MFASecret,
		&acct.FailedLoginAttempts, &acct.LockedUntil,
		&acct.PasswordChangedAt, &acct.LastLoginAt, &ip,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authkit.ErrUserNotFound
		}
		return nil, err
	}

	acct.Status = parseStatus(status)
	if ip != nil {
		acct.LastLoginIP = *ip
	}
	return &acct, nil
}

func (s *AccountStore) Create(ctx context.Context, acct *authkit.Account) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.Status.String(),
		acct.EmailVerified, acct.PhoneVerified, acct.KYCVerified,
		acct.MFAEnabled, acct.MFASecret,
		acct.FailedLoginAttempts, acct.LockedUntil,
		acct.PasswordChangedAt, acct.LastLoginAt, nullable(acct.LastLoginIP),
	)
	return err
}

func (s *AccountStore) Save(ctx context.Context, acct *authkit.Account) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET
			username = $2, email = $3, password_hash = $4, status = $5,
			email_verified = $6, phone_verified = $7, kyc_verified = $8,
			mfa_enabled = $9, mfa_secret = $10,
			failed_login_attempts = $11, locked_until = $12,
			password_changed_at = $13, last_login_at = $14, last_login_ip = $15
		 WHERE id = $1`,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.Status.String(),
		acct.EmailVerified, acct.PhoneVerified, acct.KYCVerified,
		acct.MFAEnabled, acct.MFASecret,
		acct.FailedLoginAttempts, acct.LockedUntil,
		acct.PasswordChangedAt, acct.LastLoginAt, nullable(acct.LastLoginIP),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authkit.ErrUserNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseStatus(s string) authkit.AccountStatus {
	switch s {
	case "PENDING_VERIFICATION":
		return authkit.StatusPendingVerification
	case "ACTIVE":
		return authkit.StatusActive
	case "SUSPENDED":
		return authkit.StatusSuspended
	case "BANNED":
		return authkit.StatusBanned
	case "EXPIRED":
		return authkit.StatusExpired
	default:
		return authkit.StatusInactive
	}
}
