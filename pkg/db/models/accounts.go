package models

import "github.com/angelmondragon/secureguard-backend/pkg/enums"

// AccountTable describes where an account kind lives.
type AccountTable struct {
	Name       string
	NameColumn string
	HasStatus  bool
}

var accountTables = map[enums.Role]AccountTable{
	enums.RoleAdmin:      {Name: "admins", NameColumn: "name"},
	enums.RoleSupervisor: {Name: "supervisors", NameColumn: "full_name", HasStatus: true},
	enums.RoleGuard:      {Name: "guards", NameColumn: "full_name", HasStatus: true},
}

// AccountTableFor returns the table backing role.
func AccountTableFor(role enums.Role) (AccountTable, bool) {
	t, ok := accountTables[role]
	return t, ok
}
