package domain

import "strings"

// RoleSet is a collection of roles, any one of which grants access.
// A nil or empty RoleSet means "no restriction" when used as a requirement.
type RoleSet []Role

// NewRoleSet builds a RoleSet, dropping duplicates and keeping first-seen order.
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, role := range roles {
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}

// ParseRoleSet parses raw role names. Unknown names are returned separately.
func ParseRoleSet(raw []string) (RoleSet, []string) {
	roles := make([]Role, 0, len(raw))
	var unknown []string
	for _, name := range raw {
		role, ok := ParseRole(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		roles = append(roles, role)
	}
	return NewRoleSet(roles...), unknown
}

// Empty reports whether the set holds no roles.
func (s RoleSet) Empty() bool {
	return len(s) == 0
}

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	for _, role := range s {
		if role == r {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	if len(s) == 0 || len(other) == 0 {
		return false
	}
	index := make(map[Role]struct{}, len(other))
	for _, role := range other {
		index[role] = struct{}{}
	}
	for _, role := range s {
		if _, ok := index[role]; ok {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s RoleSet) Clone() RoleSet {
	if s == nil {
		return nil
	}
	out := make(RoleSet, len(s))
	copy(out, s)
	return out
}

// Strings returns the raw role names.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, role := range s {
		out = append(out, string(role))
	}
	return out
}

func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}
