package token

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mnbara/authkit/kv"
)

var (
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned on signature, issuer, or claim-shape failure.
	ErrInvalid = errors.New("token invalid")
	// ErrRevoked is returned when an access token's id is blacklisted.
	ErrRevoked = errors.New("token revoked")
	// ErrNotFound is returned when a refresh token has no live registry
	// entry or does not match the registered value byte-for-byte.
	ErrNotFound = errors.New("refresh token not found")
)

// Config holds the signing material and lifetimes for both token kinds.
// AccessSecret and RefreshSecret must differ; each signs only its own
// token type.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service issues, validates, and revokes access and refresh tokens.
// Revocation bookkeeping lives entirely in the shared ephemeral store,
// keyed as blacklist:{jti}, refresh_token:{account}:{device}, and
// token_metadata:{account}:{device}:{jti}.
type Service struct {
	config Config
	store  kv.Store
	now    func() time.Time
}

// NewService validates cfg and returns a token [Service].
func NewService(cfg Config, store kv.Store) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer must not be empty")
	}
	if store == nil {
		return nil, errors.New("token service requires a store")
	}

	return &Service{
		config: cfg,
		store:  store,
		now:    time.Now,
	}, nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func refreshKey(accountID, deviceID string) string {
	return "refresh_token:" + accountID + ":" + deviceID
}

func refreshPrefix(accountID string) string {
	return "refresh_token:" + accountID + ":"
}

func metadataKey(accountID, deviceID, jti string) string {
	return "token_metadata:" + accountID + ":" + deviceID + ":" + jti
}

func metadataPrefix(accountID string) string {
	return "token_metadata:" + accountID + ":"
}

// IssueAccessToken signs an access token for id on the given device and
// records its metadata for later bulk revocation. Fails only on store or
// signing failure.
func (s *Service) IssueAccessToken(ctx context.Context, id Identity, deviceID, ip string) (string, error) {
	now := s.now()
	jti := uuid.NewString()

	claims := AccessClaims{
		Username:      id.Username,
		Email:         id.Email,
		Roles:         id.Roles,
		Permissions:   id.Permissions,
		DeviceID:      deviceID,
		IP:            ip,
		MFAEnabled:    id.MFAEnabled,
		EmailVerified: id.EmailVerified,
		KYCVerified:   id.KYCVerified,
		TokenType:     TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AccountID,
			Issuer:    s.config.Issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.AccessSecret)
	if err != nil {
		return "", err
	}

	if err := s.store.SetWithTTL(ctx, metadataKey(id.AccountID, deviceID, jti), "active", s.config.AccessTTL); err != nil {
		return "", err
	}

	return signed, nil
}

// IssueRefreshToken signs a refresh token and registers it as the single
// live refresh token for (account, device), implicitly invalidating any
// previous one for that device.
func (s *Service) IssueRefreshToken(ctx context.Context, id Identity, deviceID, ip string) (string, error) {
	now := s.now()

	claims := RefreshClaims{
		Username:  id.Username,
		DeviceID:  deviceID,
		IP:        ip,
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AccountID,
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.RefreshSecret)
	if err != nil {
		return "", err
	}

	if err := s.store.SetWithTTL(ctx, refreshKey(id.AccountID, deviceID), signed, s.config.RefreshTTL); err != nil {
		return "", err
	}

	return signed, nil
}

// ValidateAccess verifies signature, issuer, and expiry, then checks the
// blacklist by token id. Store unavailability is returned as-is so the
// caller fails closed.
func (s *Service) ValidateAccess(ctx context.Context, tokenStr string) (*AccessClaims, error) {
	claims, err := s.parseAccess(tokenStr, true)
	if err != nil {
		return nil, err
	}

	_, err = s.store.Get(ctx, blacklistKey(claims.ID))
	switch {
	case err == nil:
		return nil, ErrRevoked
	case errors.Is(err, kv.ErrNotFound):
		return claims, nil
	default:
		return nil, err
	}
}

// ValidateRefresh verifies signature and expiry, then requires the
// registry entry for (subject, device) to exist and equal the presented
// token byte-for-byte. Rotated, missing, or foreign tokens all fail with
// [ErrNotFound], which is what makes revocation a single delete.
func (s *Service) ValidateRefresh(ctx context.Context, tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.config.RefreshSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid || claims.TokenType != TypeRefresh {
		return nil, ErrInvalid
	}

	stored, err := s.store.Get(ctx, refreshKey(claims.Subject, claims.DeviceID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if stored != tokenStr {
		return nil, ErrNotFound
	}

	return claims, nil
}

// DecodeAccess verifies the signature only, skipping expiry and issuer
// validation. Used for revocation paths where an already-expired token
// must still decode.
func (s *Service) DecodeAccess(tokenStr string) (*AccessClaims, error) {
	return s.parseAccess(tokenStr, false)
}

func (s *Service) parseAccess(tokenStr string, validateClaims bool) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if validateClaims {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	} else {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	claims := &AccessClaims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.config.AccessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid || claims.TokenType != TypeAccess {
		return nil, ErrInvalid
	}

	return claims, nil
}

// Blacklist invalidates an access token before natural expiry by writing
// a blacklist entry whose TTL equals the token's remaining lifetime, so
// the set is self-pruning. Blacklisting an already-blacklisted or
// already-expired token is a no-op.
func (s *Service) Blacklist(ctx context.Context, tokenStr string) error {
	claims, err := s.DecodeAccess(tokenStr)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return ErrInvalid
	}

	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}

	return s.store.SetWithTTL(ctx, blacklistKey(claims.ID), "true", remaining)
}

// RevokeAllForAccount blacklists every tracked access token for the
// account and deletes all metadata and refresh-registry entries under
// the account's prefix.
//
// This is best-effort, not instantaneous: the scan and the deletes are
// separate steps, so a token issued concurrently with the scan may
// survive until natural expiry. Callers needing a hard cut-off must
// follow up with a second invocation.
func (s *Service) RevokeAllForAccount(ctx context.Context, accountID string) error {
	metaKeys, err := s.store.ScanPrefix(ctx, metadataPrefix(accountID))
	if err != nil {
		return err
	}

	for _, key := range metaKeys {
		jti := key[strings.LastIndex(key, ":")+1:]
		if jti == "" {
			continue
		}
		if err := s.store.SetWithTTL(ctx, blacklistKey(jti), "true", s.config.AccessTTL); err != nil {
			return err
		}
	}
	if err := s.store.DeleteMany(ctx, metaKeys...); err != nil {
		return err
	}

	refreshKeys, err := s.store.ScanPrefix(ctx, refreshPrefix(accountID))
	if err != nil {
		return err
	}
	return s.store.DeleteMany(ctx, refreshKeys...)
}

// RevokeDevice deletes the refresh-registry entry for (account, device).
// Access tokens already issued to that device are not blacklisted; they
// expire naturally.
func (s *Service) RevokeDevice(ctx context.Context, accountID, deviceID string) error {
	return s.store.Delete(ctx, refreshKey(accountID, deviceID))
}

// AccessTTL exposes the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.config.AccessTTL
}
