// Package authkit is an embeddable session-credential core: signed
// access/refresh token lifecycle with revocation, an account security
// state machine with failed-login lockout, role and permission
// resolution into token claims, and a short-lived second-factor
// challenge protocol.
//
// All ephemeral security state (blacklist entries, refresh-token
// registry, token metadata, challenges) lives in a shared key-value
// store with TTLs, so revocation takes effect across every process
// sharing that store and expired state prunes itself. Durable account
// and role data stays behind the AccountStore and RoleStore interfaces;
// the pgstore subpackage provides PostgreSQL implementations.
package authkit
