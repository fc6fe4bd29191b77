package authkit

import (
	"context"
	"errors"
	"testing"

	"github.com/mnbara/authkit/rbac"
)

func loginTokens(t *testing.T, env *testEnv) *LoginResult {
	t.Helper()

	res, err := env.engine.Login(context.Background(), LoginRequest{
		Identifier: "alice",
		Password:   testPassword,
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return res
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	access, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if access == "" {
		t.Fatal("expected a new access token")
	}

	claims, err := env.engine.ValidateAccess(ctx, access)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if claims.DeviceID != tokens.DeviceID {
		t.Fatalf("expected device %s carried over, got %s", tokens.DeviceID, claims.DeviceID)
	}
}

func TestRefreshDoesNotRotateRefreshToken(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	// The same refresh token keeps working.
	if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
}

func TestRefreshPicksUpNewGrants(t *testing.T) {
	env := newTestEngine(t)
	id := registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	env.roles.assign(id,
		rbac.Role{ID: 1, Name: "USER", HierarchyLevel: 1, Active: true},
		rbac.Role{ID: 2, Name: "ADMIN", HierarchyLevel: 100, Active: true,
			Permissions: []rbac.Permission{{ID: 9, Name: "user:manage"}}},
	)

	access, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	claims, err := env.engine.ValidateAccess(ctx, access)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if len(claims.Roles) != 2 || claims.Roles[1] != "ADMIN" {
		t.Fatalf("expected refreshed roles, got %v", claims.Roles)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "user:manage" {
		t.Fatalf("expected refreshed permissions, got %v", claims.Permissions)
	}
}

func TestRefreshStampsCallerIP(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	ctx := context.Background()

	tokens, err := env.engine.Login(ctx, LoginRequest{
		Identifier: "alice",
		Password:   testPassword,
		IP:         "10.0.0.2",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The client moved networks between login and refresh; the new access
	// token must carry the refresh-time address.
	access, err := env.engine.Refresh(ctx, tokens.RefreshToken, "172.16.0.7")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	claims, err := env.engine.ValidateAccess(ctx, access)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if claims.IP != "172.16.0.7" {
		t.Fatalf("expected refresh-time ip 172.16.0.7, got %q", claims.IP)
	}
}

func TestRefreshRejectsTamperedToken(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)

	tampered := tokens.RefreshToken[:len(tokens.RefreshToken)-2] + "xx"
	if _, err := env.engine.Refresh(context.Background(), tampered, "10.0.0.9"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshRejectsLockedAccount(t *testing.T) {
	env := newTestEngine(t)
	id := registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)

	acct := env.accounts.get(t, id)
	acct.Status = StatusBanned
	env.accounts.set(acct)

	if _, err := env.engine.Refresh(context.Background(), tokens.RefreshToken, "10.0.0.9"); !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func TestValidateAccessRejectsBlacklisted(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	if _, err := env.engine.ValidateAccess(ctx, tokens.AccessToken); err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}

	env.engine.Logout(ctx, tokens.AccessToken, "", false)

	if _, err := env.engine.ValidateAccess(ctx, tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestValidateAccessFailsClosed(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)

	env.redis.Close()

	_, err := env.engine.ValidateAccess(context.Background(), tokens.AccessToken)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
