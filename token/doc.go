// Package token implements the signed-token lifecycle: issuance,
// validation, revocation bookkeeping, and the per-device refresh-token
// registry. Access and refresh tokens are HMAC-SHA256 JWTs signed with
// independent secrets so that a compromised refresh-signing key cannot
// mint access tokens. All revocation state lives in the shared ephemeral
// store; no validity decision is cached in process.
package token
