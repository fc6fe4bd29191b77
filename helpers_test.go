package authkit

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mnbara/authkit/kv"
	"github.com/mnbara/authkit/rbac"
)

// memAccounts is an in-memory AccountStore. Reads and writes copy the
// record so callers never share a pointer with the store, matching how a
// database-backed store behaves.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*Account{}}
}

func clone(a *Account) *Account {
	c := *a
	return &c
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		return clone(a), nil
	}
	return nil, ErrUserNotFound
}

func (m *memAccounts) FindByUsername(_ context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memAccounts) Create(_ context.Context, acct *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[acct.ID] = clone(acct)
	return nil
}

func (m *memAccounts) Save(_ context.Context, acct *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[acct.ID]; !ok {
		return ErrUserNotFound
	}
	m.byID[acct.ID] = clone(acct)
	return nil
}

// get returns the stored record for assertions.
func (m *memAccounts) get(t *testing.T, id string) *Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		t.Fatalf("account %s not in store", id)
	}
	return clone(a)
}

// set overwrites the stored record, for arranging test fixtures.
func (m *memAccounts) set(acct *Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[acct.ID] = clone(acct)
}

// memRoles returns a fixed role set per account, defaulting to a plain
// USER role when no explicit assignment exists.
type memRoles struct {
	mu     sync.Mutex
	byAcct map[string][]rbac.Role
}

func newMemRoles() *memRoles {
	return &memRoles{byAcct: map[string][]rbac.Role{}}
}

func (m *memRoles) assign(accountID string, roles ...rbac.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byAcct[accountID] = roles
}

func (m *memRoles) LoadAssignedRoles(_ context.Context, accountID string) ([]rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if roles, ok := m.byAcct[accountID]; ok {
		return roles, nil
	}
	return []rbac.Role{{
		ID:             1,
		Name:           "USER",
		HierarchyLevel: 1,
		Active:         true,
		Permissions:    []rbac.Permission{{ID: 1, Name: "profile:read"}},
	}}, nil
}

// faultyAccounts fails every call with the configured error, standing in
// for an unreachable database.
type faultyAccounts struct {
	err error
}

func (f faultyAccounts) FindByID(context.Context, string) (*Account, error)       { return nil, f.err }
func (f faultyAccounts) FindByUsername(context.Context, string) (*Account, error) { return nil, f.err }
func (f faultyAccounts) FindByEmail(context.Context, string) (*Account, error)    { return nil, f.err }
func (f faultyAccounts) Create(context.Context, *Account) error                   { return f.err }
func (f faultyAccounts) Save(context.Context, *Account) error                     { return f.err }

type faultyRoles struct {
	err error
}

func (f faultyRoles) LoadAssignedRoles(context.Context, string) ([]rbac.Role, error) {
	return nil, f.err
}

// stubVerifier accepts exactly one code.
type stubVerifier struct {
	code string
}

func (v stubVerifier) Verify(_, code string) bool {
	return code == v.code
}

type testEnv struct {
	engine   *Engine
	accounts *memAccounts
	roles    *memRoles
	redis    *miniredis.Miniredis
	kv       kv.Store
}

func newTestEngine(t *testing.T, mutate ...func(*Config, *Deps)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	accounts := newMemAccounts()
	roles := newMemRoles()

	cfg := Config{
		JWT: JWTConfig{
			AccessSecret:  []byte("access-secret-for-tests-0123456789"),
			RefreshSecret: []byte("refresh-secret-for-tests-0123456789"),
			Issuer:        "authkit-test",
		},
	}
	store := kv.NewRedisStore(client, 0)
	deps := Deps{
		KV:       store,
		Accounts: accounts,
		Roles:    roles,
		Verifier: stubVerifier{code: "654321"},
	}
	for _, fn := range mutate {
		fn(&cfg, &deps)
	}

	engine, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{
		engine:   engine,
		accounts: accounts,
		roles:    roles,
		redis:    mr,
		kv:       store,
	}
}

const testPassword = "Correct!Horse1"

// registerAccount creates an account through the engine and returns its
// id.
func registerAccount(t *testing.T, env *testEnv, username, email string) string {
	t.Helper()

	res, err := env.engine.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: testPassword,
		IP:       "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return res.AccountID
}

// enableMFA flips the stored account to MFA-enabled with a stub secret.
func enableMFA(t *testing.T, env *testEnv, accountID string) {
	t.Helper()

	acct := env.accounts.get(t, accountID)
	acct.MFAEnabled = true
	acct.MFASecret = "JBSWY3DPEHPK3PXP"
	env.accounts.set(acct)
}
