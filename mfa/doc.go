// Package mfa provides the short-lived second-factor challenge store and
// an RFC 6238 TOTP verifier. A challenge gates token issuance after the
// primary credential succeeds: it is single-use, keyed per account and
// device, and expires on its own if never consumed.
package mfa
