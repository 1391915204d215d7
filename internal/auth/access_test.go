package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-console/internal/domain"
)

func roles(names ...domain.Role) domain.RoleSet {
	return domain.NewRoleSet(names...)
}

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name     string
		required domain.RoleSet
		current  domain.RoleSet
		want     bool
	}{
		{"manager is an admin", AdminOnly(), roles(domain.RoleBranchManager), true},
		{"hr is not an admin", AdminOnly(), roles(domain.RoleHR), false},
		{"engineer passes not-hr", NotHR(), roles(domain.RoleEngineer), true},
		{"engineer fails hr only", roles(domain.RoleHR), roles(domain.RoleEngineer), false},
		{"one shared role is enough", roles(domain.RoleFinance), roles(domain.RoleHR, domain.RoleFinance), true},
		{"empty requirement admits anonymous", nil, nil, true},
		{"empty requirement admits anyone", domain.RoleSet{}, roles(domain.RoleHR), true},
		{"anonymous fails a requirement", All(), nil, false},
		{"identity without roles fails", All(), domain.RoleSet{}, false},
		{"boss has no implicit power", roles(domain.RoleHR), roles(domain.RoleBoss), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.required, tc.current))
		})
	}
}

func TestCanAccessIsPure(t *testing.T) {
	required := AdminOnly()
	current := roles(domain.RoleDirector)
	for i := 0; i < 3; i++ {
		assert.True(t, CanAccess(required, current))
	}
	assert.Equal(t, AdminOnly(), required)
	assert.Equal(t, roles(domain.RoleDirector), current)
}

func TestCanAccessAction(t *testing.T) {
	assert.True(t, CanAccessAction(ActionLeaveStatusRevoke, roles(domain.RoleHR)))
	assert.False(t, CanAccessAction(ActionLeaveStatusRevoke, roles(domain.RoleBoss)))
	assert.True(t, CanAccessAction(ActionLeaveStatusView, roles(domain.RoleEngineer)))
	assert.False(t, CanAccessAction(ActionLeaveStatusView, roles(domain.RoleHR)))
	assert.False(t, CanAccessAction("claim.delete", All()))
}

func TestNamedSets(t *testing.T) {
	assert.Len(t, All(), len(domain.AllRoles()))
	assert.False(t, NotHR().Contains(domain.RoleHR))
	assert.Len(t, NotHR(), len(domain.AllRoles())-1)
	assert.True(t, EngineerOnly().Contains(domain.RoleBoss))
	assert.True(t, BAUOnly().Contains(domain.RoleEngineer))
	assert.False(t, BAUOnly().Contains(domain.RoleFinance))

	set := AdminOnly()
	set[0] = domain.RoleHR
	assert.Equal(t, domain.RoleBoss, AdminOnly()[0])
}

func TestPolicyUsesRegisteredRoles(t *testing.T) {
	for _, route := range Routes() {
		for _, role := range route.Roles {
			assert.True(t, role.Valid(), "%s: %s", route.Path, role)
		}
	}
	for name, required := range Actions() {
		require.NotEmpty(t, required, name)
		for _, role := range required {
			assert.True(t, role.Valid(), "%s: %s", name, role)
		}
	}
}

func TestLookupRoute(t *testing.T) {
	route, ok := LookupRoute("branch/create/")
	require.True(t, ok)
	assert.Equal(t, "/branch/create", route.Path)
	assert.True(t, route.Roles.Contains(domain.RoleHR))
	assert.False(t, route.Roles.Contains(domain.RoleBranchManager))

	route, ok = LookupRoute("/leave")
	require.True(t, ok)
	assert.True(t, route.Roles.Empty())

	_, ok = LookupRoute("/payroll")
	assert.False(t, ok)
}

func TestActionNamesSorted(t *testing.T) {
	names := ActionNames()
	require.Len(t, names, len(Actions()))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
