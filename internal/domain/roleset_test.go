package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRoleSetDedupesInOrder(t *testing.T) {
	set := NewRoleSet(RoleHR, RoleBoss, RoleHR, RoleFinance, RoleBoss)
	assert.Equal(t, RoleSet{RoleHR, RoleBoss, RoleFinance}, set)
	assert.NotNil(t, NewRoleSet())
}

func TestParseRoleSetReportsUnknown(t *testing.T) {
	set, unknown := ParseRoleSet([]string{"hr", "ceo", "FINANCE", "hr"})
	assert.Equal(t, RoleSet{RoleHR, RoleFinance}, set)
	assert.Equal(t, []string{"ceo"}, unknown)
}

func TestRoleSetIntersects(t *testing.T) {
	admin := NewRoleSet(RoleBoss, RoleDirector, RoleBranchManager)

	assert.True(t, admin.Intersects(NewRoleSet(RoleBranchManager)))
	assert.True(t, admin.Intersects(NewRoleSet(RoleEngineer, RoleDirector)))
	assert.False(t, admin.Intersects(NewRoleSet(RoleHR)))
	assert.False(t, admin.Intersects(nil))
	assert.False(t, RoleSet{}.Intersects(admin))
}

func TestRoleSetContainsAndEmpty(t *testing.T) {
	set := NewRoleSet(RoleEngineer)
	assert.True(t, set.Contains(RoleEngineer))
	assert.False(t, set.Contains(RoleBoss))
	assert.False(t, set.Empty())
	assert.True(t, RoleSet(nil).Empty())
}

func TestRoleSetClone(t *testing.T) {
	assert.Nil(t, RoleSet(nil).Clone())

	set := NewRoleSet(RoleHR, RoleFinance)
	clone := set.Clone()
	clone[0] = RoleBoss
	assert.Equal(t, RoleHR, set[0])
}

func TestRoleSetString(t *testing.T) {
	assert.Equal(t, "boss,hr", NewRoleSet(RoleBoss, RoleHR).String())
	assert.Equal(t, []string{}, RoleSet(nil).Strings())
}

func TestSessionRecordExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, SessionRecord{}.Expired(now))
	assert.False(t, SessionRecord{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, SessionRecord{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
