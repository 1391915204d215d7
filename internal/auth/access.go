package auth

import "github.com/spec-kit/claims-console/internal/domain"

// CanAccess reports whether current satisfies required. An empty requirement admits
// everyone, including anonymous callers; otherwise one shared role is enough.
func CanAccess(required, current domain.RoleSet) bool {
	if len(required) == 0 {
		return true
	}
	return required.Intersects(current)
}

// CanAccessAction evaluates a named inline action. Unknown actions are denied.
func CanAccessAction(name string, current domain.RoleSet) bool {
	required, ok := Actions()[name]
	if !ok {
		return false
	}
	return CanAccess(required, current)
}
