package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/events"
	"github.com/spec-kit/claims-console/internal/persistence"
	"github.com/spec-kit/claims-console/internal/repository"
)

func TestOpenFetchesIdentityAndPersistsRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cookies, _ := h.backend.Login(ctx, "ada@example.com", "pw")
	id, store, err := h.sessions.Open(ctx, "ada@example.com", cookies)
	require.NoError(t, err)

	assert.Equal(t, domain.NewRoleSet(domain.RoleHR), store.CurrentRoles())
	assert.True(t, h.mr.Exists("console:session:"+id))
	assert.Equal(t, 1, h.sessions.Active())

	record, err := h.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, string(record.SealedCookies), "abc")

	set := h.events.ofType(events.EventIdentitySet)
	require.Len(t, set, 1)
	assert.Equal(t, id, set[0].SessionID)
	assert.Equal(t, []string{"hr"}, set[0].Payload.(events.IdentitySetPayload).Roles)
}

func TestOpenDiscardsSessionWhenIdentityFails(t *testing.T) {
	h := newHarness(t)
	h.backend.set(domain.Identity{}, errors.New("boom"))

	cookies, _ := h.backend.Login(context.Background(), "ada@example.com", "pw")
	_, _, err := h.sessions.Open(context.Background(), "ada@example.com", cookies)
	require.Error(t, err)

	assert.Zero(t, h.sessions.Active())
	assert.Empty(t, h.mr.Keys())
	assert.Empty(t, h.events.ofType(events.EventIdentityCleared))
}

func TestStoreUnknownSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.Store(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestStoreRehydratesFromBackendNotCache(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)

	h.sessions.Dispose(id)
	assert.Zero(t, h.sessions.Active())

	h.backend.set(domain.Identity{UserID: "7", Roles: domain.NewRoleSet(domain.RoleFinance)}, nil)
	store, err := h.sessions.Store(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, domain.NewRoleSet(domain.RoleFinance), store.CurrentRoles())
	assert.Equal(t, 2, h.backend.fetchCount())
	require.Len(t, h.backend.lastCookies, 2)
	assert.Equal(t, "abc", h.backend.lastCookies[0].Value)
}

func TestConcurrentRehydrationFetchesOnce(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	h.sessions.Dispose(id)

	h.backend.mu.Lock()
	h.backend.release = make(chan struct{})
	h.backend.mu.Unlock()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.sessions.Store(context.Background(), id)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return h.backend.fetchCount() == 2 }, time.Second, 5*time.Millisecond)
	close(h.backend.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, h.backend.fetchCount())
	assert.Equal(t, 1, h.sessions.Active())
}

func TestRehydrationFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	h.sessions.Dispose(id)

	h.backend.set(domain.Identity{}, errors.New("unauthorized"))
	_, err := h.sessions.Store(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	_, err = h.repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestUnreadableRecordIsDiscarded(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	h.sessions.Dispose(id)
	h.sessions.sealer = persistence.NewSealer("rotated")

	_, err := h.sessions.Store(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.False(t, h.mr.Exists("console:session:"+id))
}

func TestRefreshFailureClearsAndEndsSession(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	store, err := h.sessions.Store(context.Background(), id)
	require.NoError(t, err)

	h.backend.set(domain.Identity{}, errors.New("backend down"))
	_, err = h.sessions.Refresh(context.Background(), id)
	require.Error(t, err)

	assert.False(t, store.Authenticated())
	assert.Zero(t, h.sessions.Active())
	cleared := h.events.ofType(events.EventIdentityCleared)
	require.Len(t, cleared, 1)
	assert.Equal(t, events.ReasonRefreshFailed, cleared[0].Payload.(events.IdentityClearedPayload).Reason)
}

func TestRefreshPicksUpNewRoles(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)

	h.backend.set(domain.Identity{UserID: "7", Roles: domain.NewRoleSet(domain.RoleDirector)}, nil)
	store, err := h.sessions.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.NewRoleSet(domain.RoleDirector), store.CurrentRoles())

	nodes, err := h.sessions.Menu(context.Background(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, nodes)
	assert.Len(t, h.events.ofType(events.EventIdentitySet), 2)
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	store, err := h.sessions.Store(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, h.sessions.Logout(context.Background(), id))
	require.NoError(t, h.sessions.Logout(context.Background(), id))

	assert.False(t, store.Authenticated())
	assert.Equal(t, 1, h.backend.logouts)
	assert.Empty(t, h.mr.Keys())

	cleared := h.events.ofType(events.EventIdentityCleared)
	require.Len(t, cleared, 1)
	assert.Equal(t, events.ReasonLogout, cleared[0].Payload.(events.IdentityClearedPayload).Reason)
}

func TestExpiredSessionIsDropped(t *testing.T) {
	h := newHarness(t)
	id := h.open(t)
	h.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := h.sessions.Store(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	cleared := h.events.ofType(events.EventIdentityCleared)
	require.Len(t, cleared, 1)
	assert.Equal(t, events.ReasonExpired, cleared[0].Payload.(events.IdentityClearedPayload).Reason)
}
