package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mnbara/authkit/rbac"
)

// RoleStore implements authkit.RoleStore. Roles and their permissions
// come back in one join so resolution needs a single round trip.
type RoleStore struct {
	db *pgxpool.Pool
}

func NewRoleStore(db *pgxpool.Pool) *RoleStore {
	return &RoleStore{db: db}
}

// LoadAssignedRoles returns the active roles assigned to the account,
// each with its permissions attached. An account with no assignments
// gets an empty slice, not an error.
func (s *RoleStore) LoadAssignedRoles(ctx context.Context, accountID string) ([]rbac.Role, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.name, r.hierarchy_level, r.role_type, r.active,
		        p.id, p.name, p.resource, p.action
		 FROM account_roles ar
		 JOIN roles r ON r.id = ar.role_id
		 LEFT JOIN role_permissions rp ON rp.role_id = r.id
		 LEFT JOIN permissions p ON p.id = rp.permission_id
		 WHERE ar.account_id = $1 AND r.active = true
		 ORDER BY r.hierarchy_level DESC, r.id, p.id`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		roles []rbac.Role
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			role                  rbac.Role
			permID                *int64
			permName, res, action *string
		)
		err := rows.Scan(
			&role.ID, &role.Name, &role.HierarchyLevel, &role.RoleType, &role.Active,
			&permID, &permName, &res, &action,
		)
		if err != nil {
			return nil, err
		}

		i, ok := index[role.ID]
		if !ok {
			i = len(roles)
			index[role.ID] = i
			roles = append(roles, role)
		}
		if permID != nil {
			roles[i].Permissions = append(roles[i].Permissions, rbac.Permission{
				ID:       *permID,
				Name:     deref(permName),
				Resource: deref(res),
				Action:   deref(action),
			})
		}
	}
	return roles, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
