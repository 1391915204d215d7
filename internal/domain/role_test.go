package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("  Manager ")
	require.True(t, ok)
	assert.Equal(t, RoleBranchManager, role)

	_, ok = ParseRole("intern")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestRoleValid(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.Valid(), string(role))
	}
	assert.False(t, Role("Boss").Valid())
	assert.False(t, Role("").Valid())
}

func TestAllRolesReturnsCopy(t *testing.T) {
	roles := AllRoles()
	roles[0] = "intern"
	assert.Equal(t, RoleBoss, AllRoles()[0])
}

func TestRoleIDsAndLabels(t *testing.T) {
	id, ok := RoleIDOf(RoleHR)
	require.True(t, ok)
	assert.Equal(t, RoleID(2), id)
	assert.Equal(t, "Human Resources", RoleLabel(id))

	id, ok = RoleIDOf(RoleBranchManager)
	require.True(t, ok)
	assert.Equal(t, "Branch Manager", RoleLabel(id))

	_, ok = RoleIDOf(RoleBoss)
	assert.False(t, ok)
	assert.Empty(t, RoleLabel(42))
}

func TestIdentityCloneIsIndependent(t *testing.T) {
	base := Identity{UserID: "7", Roles: NewRoleSet(RoleHR), Permission: []byte(`{"a":1}`)}
	clone := base.Clone()
	clone.Roles[0] = RoleBoss
	clone.Permission[0] = '['

	assert.Equal(t, RoleHR, base.Roles[0])
	assert.Equal(t, `{"a":1}`, string(base.Permission))

	empty := Identity{}.Clone()
	assert.NotNil(t, empty.Roles)
	assert.True(t, empty.Roles.Empty())
}

func TestPrimaryRole(t *testing.T) {
	role, ok := Identity{Roles: NewRoleSet(RoleFinance, RoleHR)}.PrimaryRole()
	require.True(t, ok)
	assert.Equal(t, RoleFinance, role)

	_, ok = Identity{}.PrimaryRole()
	assert.False(t, ok)
}
