package domain

import "strings"

// Role names a job function used as the unit of authorization.
type Role string

const (
	RoleBoss          Role = "boss"
	RoleDirector      Role = "director"
	RoleBranchManager Role = "manager"
	RoleFinance       Role = "finance"
	RoleEngineer      Role = "engineer"
	RoleHR            Role = "hr"
)

var registry = []Role{
	RoleBoss,
	RoleDirector,
	RoleBranchManager,
	RoleFinance,
	RoleEngineer,
	RoleHR,
}

// AllRoles returns every registered role in declaration order.
func AllRoles() []Role {
	out := make([]Role, len(registry))
	copy(out, registry)
	return out
}

// ParseRole maps a raw role string onto the registry.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, role := range registry {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// Valid reports whether r is part of the registry.
func (r Role) Valid() bool {
	for _, role := range registry {
		if role == r {
			return true
		}
	}
	return false
}

// RoleID is the numeric id the backend uses for a role. Display only.
type RoleID int

var roleIDs = map[Role]RoleID{
	RoleDirector:      1,
	RoleHR:            2,
	RoleFinance:       3,
	RoleBranchManager: 4,
	RoleEngineer:      5,
}

var roleLabels = map[RoleID]string{
	1: "Director",
	2: "Human Resources",
	3: "Finance",
	4: "Branch Manager",
	5: "Engineer",
}

// RoleIDOf returns the numeric id of a role. The boss has none.
func RoleIDOf(r Role) (RoleID, bool) {
	id, ok := roleIDs[r]
	return id, ok
}

// RoleLabel returns the human readable label for a role id.
func RoleLabel(id RoleID) string {
	return roleLabels[id]
}
