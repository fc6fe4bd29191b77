package token

import "github.com/golang-jwt/jwt/v5"

const (
	// TypeAccess is the claim value marking an access token.
	TypeAccess = "access"
	// TypeRefresh is the claim value marking a refresh token.
	TypeRefresh = "refresh"
)

// AccessClaims is the claim payload of an access token. Subject, token
// id, issued-at, and expiry live in the embedded registered claims.
type AccessClaims struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	Permissions   []string `json:"permissions"`
	DeviceID      string   `json:"deviceId"`
	IP            string   `json:"ip,omitempty"`
	MFAEnabled    bool     `json:"mfaEnabled"`
	EmailVerified bool     `json:"emailVerified"`
	KYCVerified   bool     `json:"kycVerified"`
	TokenType     string   `json:"type"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim payload of a refresh token. It carries the
// minimum needed to locate the registry entry and re-issue access tokens.
type RefreshClaims struct {
	Username  string `json:"username"`
	DeviceID  string `json:"deviceId"`
	IP        string `json:"ip,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Identity is the resolved account state bound into an access token at
// issuance time. The caller resolves roles and permissions before
// issuance; the token service never loads them itself.
type Identity struct {
	AccountID     string
	Username      string
	Email         string
	Roles         []string
	Permissions   []string
	MFAEnabled    bool
	EmailVerified bool
	KYCVerified   bool
}
