package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-console/internal/domain"
)

func TestRefreshSetsIdentity(t *testing.T) {
	store := NewStore()
	err := Refresh(context.Background(), store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		return hrIdentity(), nil
	}))

	require.NoError(t, err)
	assert.Equal(t, domain.NewRoleSet(domain.RoleHR), store.CurrentRoles())
}

func TestRefreshFailureClearsIdentity(t *testing.T) {
	store := NewStore()
	store.SetIdentity(hrIdentity())
	boom := errors.New("backend down")

	err := Refresh(context.Background(), store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		return domain.Identity{}, boom
	}))

	assert.ErrorIs(t, err, boom)
	assert.False(t, store.Authenticated())
}

func TestRefreshCancelledContextClearsIdentity(t *testing.T) {
	store := NewStore()
	store.SetIdentity(hrIdentity())
	ctx, cancel := context.WithCancel(context.Background())

	err := Refresh(ctx, store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		cancel()
		return hrIdentity(), nil
	}))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.Authenticated())
}

func TestRefreshSupersededByLogout(t *testing.T) {
	store := NewStore()
	store.SetIdentity(hrIdentity())

	err := Refresh(context.Background(), store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		store.ClearIdentity()
		return domain.Identity{UserID: "1", Roles: domain.NewRoleSet(domain.RoleBoss)}, nil
	}))

	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, store.Authenticated())
}

func TestRefreshSupersededByClearOnAnonymousStore(t *testing.T) {
	store := NewStore()
	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	err := Refresh(context.Background(), store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		store.ClearIdentity()
		return domain.Identity{UserID: "1", Roles: domain.NewRoleSet(domain.RoleBoss)}, nil
	}))

	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, store.Authenticated())
	assert.True(t, store.CurrentRoles().Empty())
	assert.Empty(t, changes)
}

func TestRefreshNotifiesOnce(t *testing.T) {
	store := NewStore()
	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, Refresh(context.Background(), store, FetcherFunc(func(context.Context) (domain.Identity, error) {
		return hrIdentity(), nil
	})))

	require.Len(t, changes, 1)
	assert.Equal(t, domain.NewRoleSet(domain.RoleHR), changes[0].Identity.Roles)
}
