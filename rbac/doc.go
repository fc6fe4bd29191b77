// Package rbac models roles and permissions and resolves an account's
// role assignments into the flat name lists embedded in access tokens.
// Authority comparisons are strictly by hierarchy level.
package rbac
