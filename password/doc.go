// Package password provides Argon2id secret hashing in PHC string format
// and the account password policy. Stored secrets are never plaintext;
// verification is constant time over the derived key.
package password
