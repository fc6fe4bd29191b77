// Package pgstore provides PostgreSQL-backed implementations of the
// authkit AccountStore and RoleStore interfaces on top of pgx.
package pgstore
