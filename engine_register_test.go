package authkit

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterCreatesPendingAccountWithTokens(t *testing.T) {
	env := newTestEngine(t)

	res, err := env.engine.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.AccountID == "" || res.DeviceID == "" {
		t.Fatalf("expected generated ids, got %+v", res)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected an initial token pair")
	}
	if len(res.Roles) != 1 || res.Roles[0] != "USER" {
		t.Fatalf("expected default USER role, got %v", res.Roles)
	}

	acct := env.accounts.get(t, res.AccountID)
	if acct.Status != StatusPendingVerification {
		t.Fatalf("expected PENDING_VERIFICATION, got %v", acct.Status)
	}
	if acct.PasswordHash == "" || acct.PasswordHash == testPassword {
		t.Fatal("expected the password to be stored hashed")
	}
	if acct.PasswordChangedAt.IsZero() {
		t.Fatal("expected password_changed_at to be stamped")
	}
}

func TestRegisterRejectsDuplicateUsernameAndEmail(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")

	_, err := env.engine.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists for duplicate username, got %v", err)
	}

	_, err = env.engine.Register(context.Background(), RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists for duplicate email, got %v", err)
	}
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	env := newTestEngine(t)

	_, err := env.engine.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "weakpass",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := env.accounts.FindByUsername(context.Background(), "bob"); !errors.Is(err, ErrUserNotFound) {
		t.Fatal("expected no account to be created on policy failure")
	}
}
