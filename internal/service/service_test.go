package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/events"
	"github.com/spec-kit/claims-console/internal/menu"
	"github.com/spec-kit/claims-console/internal/persistence"
	"github.com/spec-kit/claims-console/internal/repository"
	"github.com/spec-kit/claims-console/internal/session"
)

type fakeBackend struct {
	mu          sync.Mutex
	loginErr    error
	fetchErr    error
	identity    domain.Identity
	fetches     int
	logouts     int
	lastCookies []*http.Cookie
	release     chan struct{}
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) ([]*http.Cookie, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return []*http.Cookie{{Name: "laravel_session", Value: "abc"}, {Name: "XSRF-TOKEN", Value: "tok"}}, nil
}

func (f *fakeBackend) Logout(_ context.Context, _ []*http.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return errors.New("backend logout unavailable")
}

func (f *fakeBackend) Fetcher(cookies []*http.Cookie) session.Fetcher {
	return session.FetcherFunc(func(context.Context) (domain.Identity, error) {
		f.mu.Lock()
		f.fetches++
		f.lastCookies = cookies
		release := f.release
		identity, err := f.identity, f.fetchErr
		f.mu.Unlock()

		if release != nil {
			<-release
		}
		return identity, err
	})
}

func (f *fakeBackend) set(identity domain.Identity, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = identity
	f.fetchErr = err
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(_ context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) ofType(eventType events.EventType) []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.Event
	for _, e := range l.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	backend  *fakeBackend
	sessions *SessionService
	repo     repository.SessionRepository
	events   *eventLog
	mr       *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := &eventLog{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	dispatcher.Subscribe(events.EventIdentitySet, log.handle)
	dispatcher.Subscribe(events.EventIdentityCleared, log.handle)
	dispatcher.Subscribe(events.EventAccessDenied, log.handle)

	repo := repository.NewSessionRepository(persistence.NewRedisWithClient(client, "console:session:"))
	backend := &fakeBackend{identity: domain.Identity{UserID: "7", Roles: domain.NewRoleSet(domain.RoleHR)}}
	sessions := NewSessionService(SessionDependencies{
		Repo:       repo,
		Sealer:     persistence.NewSealer("seal"),
		Backend:    backend,
		Dispatcher: dispatcher,
		Menu:       menu.DefaultTree(),
		TTL:        time.Hour,
	})
	return &harness{backend: backend, sessions: sessions, repo: repo, events: log, mr: mr}
}

func (h *harness) open(t *testing.T) string {
	t.Helper()
	cookies, err := h.backend.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	id, _, err := h.sessions.Open(context.Background(), "ada@example.com", cookies)
	require.NoError(t, err)
	return id
}
