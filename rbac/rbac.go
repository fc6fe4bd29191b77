package rbac

// Permission is a single named capability, conventionally "resource:action".
type Permission struct {
	ID       int64
	Name     string
	Resource string
	Action   string
}

// Role is a named bundle of permissions with an integer hierarchy level.
// Higher levels carry more authority.
type Role struct {
	ID             int64
	Name           string
	HierarchyLevel int
	RoleType       string
	Active         bool
	Permissions    []Permission
}

// Resolve flattens an account's role assignments into the role-name list
// and the deduplicated permission-name list embedded in access tokens.
// A permission appearing under multiple roles counts once. Output order
// is stable: first occurrence wins.
func Resolve(roles []Role) (roleNames []string, permissionNames []string) {
	roleNames = make([]string, 0, len(roles))
	permissionNames = make([]string, 0)

	seenRoles := make(map[string]struct{}, len(roles))
	seenPerms := make(map[string]struct{})

	for _, role := range roles {
		if _, ok := seenRoles[role.Name]; !ok {
			seenRoles[role.Name] = struct{}{}
			roleNames = append(roleNames, role.Name)
		}
		for _, perm := range role.Permissions {
			if _, ok := seenPerms[perm.Name]; ok {
				continue
			}
			seenPerms[perm.Name] = struct{}{}
			permissionNames = append(permissionNames, perm.Name)
		}
	}

	return roleNames, permissionNames
}

// CanManage reports whether role a may administer role b. The comparison
// is strict: equal hierarchy levels cannot manage each other.
func CanManage(a, b Role) bool {
	return a.HierarchyLevel > b.HierarchyLevel
}
