package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-console/internal/domain"
)

func hrIdentity() domain.Identity {
	return domain.Identity{UserID: "1", Roles: domain.NewRoleSet(domain.RoleHR)}
}

func TestStoreStartsAnonymous(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Authenticated())
	assert.NotNil(t, store.CurrentRoles())
	assert.True(t, store.CurrentRoles().Empty())

	_, ok := store.Identity()
	assert.False(t, ok)
}

func TestStoreSetAndClear(t *testing.T) {
	store := NewStore()
	store.SetIdentity(hrIdentity())

	assert.True(t, store.Authenticated())
	assert.Equal(t, domain.NewRoleSet(domain.RoleHR), store.CurrentRoles())

	store.ClearIdentity()
	assert.False(t, store.Authenticated())
	assert.True(t, store.CurrentRoles().Empty())
}

func TestStoreSnapshotsAreIndependent(t *testing.T) {
	store := NewStore()
	identity := hrIdentity()
	store.SetIdentity(identity)
	identity.Roles[0] = domain.RoleBoss

	roles := store.CurrentRoles()
	roles[0] = domain.RoleBoss

	assert.Equal(t, domain.NewRoleSet(domain.RoleHR), store.CurrentRoles())
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	store := NewStore()
	var changes []Change
	cancel := store.Subscribe(func(c Change) { changes = append(changes, c) })

	store.SetIdentity(hrIdentity())
	store.ClearIdentity()
	store.ClearIdentity()

	require.Len(t, changes, 2)
	assert.Equal(t, "1", changes[0].Identity.UserID)
	assert.False(t, changes[0].Cleared)
	assert.True(t, changes[1].Cleared)

	cancel()
	cancel()
	store.SetIdentity(hrIdentity())
	assert.Len(t, changes, 2)
}

func TestStoreGenerationAdvancesOnWrites(t *testing.T) {
	store := NewStore()
	assert.Equal(t, uint64(0), store.Generation())

	store.SetIdentity(hrIdentity())
	store.ClearIdentity()
	store.ClearIdentity()
	assert.Equal(t, uint64(3), store.Generation())
}

func TestStoreClearOnAnonymousAdvancesGenerationSilently(t *testing.T) {
	store := NewStore()
	calls := 0
	store.Subscribe(func(Change) { calls++ })

	store.ClearIdentity()

	assert.Zero(t, calls)
	assert.Equal(t, uint64(1), store.Generation())
	assert.False(t, store.Authenticated())
}

func TestStoreChangesCarryGeneration(t *testing.T) {
	store := NewStore()
	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	store.SetIdentity(hrIdentity())
	store.ClearIdentity()

	require.Len(t, changes, 2)
	assert.Equal(t, uint64(1), changes[0].Generation)
	assert.Equal(t, uint64(2), changes[1].Generation)

	roles, gen := store.Snapshot()
	assert.NotNil(t, roles)
	assert.True(t, roles.Empty())
	assert.Equal(t, uint64(2), gen)
}

func TestStoreCloseDropsListeners(t *testing.T) {
	store := NewStore()
	calls := 0
	store.Subscribe(func(Change) { calls++ })

	store.Close()
	store.SetIdentity(hrIdentity())
	store.Subscribe(func(Change) { calls++ })
	store.ClearIdentity()

	assert.Zero(t, calls)
	assert.False(t, store.Authenticated())
}

func TestStoreConcurrentReaders(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					store.SetIdentity(hrIdentity())
				} else {
					_ = store.CurrentRoles()
				}
			}
		}(i)
	}
	wg.Wait()
	assert.True(t, store.Authenticated())
}
