// Package kv defines the shared ephemeral store contract and its Redis
// implementation. All cross-request coordination in authkit (blacklists,
// refresh registry, token metadata, MFA challenges) goes through this
// package; there is no other shared mutable state.
package kv
