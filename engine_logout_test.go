package authkit

import (
	"context"
	"errors"
	"testing"
)

func TestLogoutBlacklistsAccessAndRevokesDevice(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	env.engine.Logout(ctx, tokens.AccessToken, tokens.RefreshToken, false)

	if _, err := env.engine.ValidateAccess(ctx, tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected access token revoked, got %v", err)
	}
	if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected refresh token revoked, got %v", err)
	}
}

func TestLogoutWithoutRefreshTokenKeepsDeviceRegistration(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	env.engine.Logout(ctx, tokens.AccessToken, "", false)

	if _, err := env.engine.ValidateAccess(ctx, tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected access token revoked, got %v", err)
	}
	// The refresh token was not presented, so it stays usable.
	if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); err != nil {
		t.Fatalf("expected refresh token to survive, got %v", err)
	}
}

func TestLogoutAllDevices(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	ctx := context.Background()

	first, err := env.engine.Login(ctx, LoginRequest{Identifier: "alice", Password: testPassword, DeviceID: "dev-1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	second, err := env.engine.Login(ctx, LoginRequest{Identifier: "alice", Password: testPassword, DeviceID: "dev-2"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	env.engine.Logout(ctx, first.AccessToken, "", true)

	for _, tokens := range []*LoginResult{first, second} {
		if _, err := env.engine.ValidateAccess(ctx, tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
			t.Fatalf("expected access token for %s revoked, got %v", tokens.DeviceID, err)
		}
		if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("expected refresh token for %s revoked, got %v", tokens.DeviceID, err)
		}
	}
}

func TestLogoutNeverPanicsOrErrors(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	// Garbage input.
	env.engine.Logout(ctx, "not-a-token", "also-not-a-token", false)

	// Double logout.
	env.engine.Logout(ctx, tokens.AccessToken, tokens.RefreshToken, false)
	env.engine.Logout(ctx, tokens.AccessToken, tokens.RefreshToken, false)

	// Backend down.
	env.redis.Close()
	env.engine.Logout(ctx, tokens.AccessToken, tokens.RefreshToken, true)
}

func TestLogoutRevokedTokenStaysDecodableForAudit(t *testing.T) {
	env := newTestEngine(t)
	registerAccount(t, env, "alice", "alice@example.com")
	tokens := loginTokens(t, env)
	ctx := context.Background()

	env.engine.Logout(ctx, tokens.AccessToken, "", false)

	// An expired or revoked access token still identifies its account for
	// a follow-up logout-all.
	env.engine.Logout(ctx, tokens.AccessToken, "", true)
	if _, err := env.engine.Refresh(ctx, tokens.RefreshToken, "10.0.0.9"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected refresh registry cleared by logout-all, got %v", err)
	}
}
