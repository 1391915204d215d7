package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/events"
	"github.com/spec-kit/claims-console/internal/menu"
	"github.com/spec-kit/claims-console/internal/persistence"
	"github.com/spec-kit/claims-console/internal/repository"
	"github.com/spec-kit/claims-console/internal/session"
)

// Backend is the part of the HR/claims backend the console depends on.
type Backend interface {
	Login(ctx context.Context, email, password string) ([]*http.Cookie, error)
	Logout(ctx context.Context, cookies []*http.Cookie) error
	Fetcher(cookies []*http.Cookie) session.Fetcher
}

// SessionService owns the identity store of every live console session.
type SessionService struct {
	repo       repository.SessionRepository
	sealer     *persistence.Sealer
	backend    Backend
	dispatcher events.Dispatcher
	tree       []menu.Node
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
	loads   singleflight.Group
}

type sessionEntry struct {
	id        string
	store     *session.Store
	cookies   []*http.Cookie
	expiresAt time.Time
	view      *menu.View
	cancel    func()

	mu     sync.Mutex
	reason string
}

func (e *sessionEntry) setReason(reason string) {
	e.mu.Lock()
	e.reason = reason
	e.mu.Unlock()
}

func (e *sessionEntry) takeReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	reason := e.reason
	e.reason = events.ReasonRefreshFailed
	return reason
}

// SessionDependencies bundles collaborators of the session service.
type SessionDependencies struct {
	Repo       repository.SessionRepository
	Sealer     *persistence.Sealer
	Backend    Backend
	Dispatcher events.Dispatcher
	Menu       []menu.Node
	Logger     *zap.Logger
	TTL        time.Duration
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionService{
		repo:       deps.Repo,
		sealer:     deps.Sealer,
		backend:    deps.Backend,
		dispatcher: deps.Dispatcher,
		tree:       deps.Menu,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[string]*sessionEntry),
	}
}

// Open persists a new console session around the backend cookies and fetches its
// identity. The session is discarded when the identity cannot be fetched.
func (s *SessionService) Open(ctx context.Context, email string, cookies []*http.Cookie) (string, *session.Store, error) {
	sealed, err := s.sealCookies(cookies)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	record := &domain.SessionRecord{
		ID:            uuid.NewString(),
		SealedCookies: sealed,
		Email:         email,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.repo.Save(ctx, record, s.ttl); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	entry := s.newEntry(record.ID, cookies, record.ExpiresAt)
	if err := session.Refresh(ctx, entry.store, s.backend.Fetcher(cookies)); err != nil {
		s.release(entry)
		s.deleteRecord(record.ID)
		return "", nil, err
	}

	s.mu.Lock()
	s.entries[record.ID] = entry
	s.mu.Unlock()
	return record.ID, entry.store, nil
}

// Store returns the store of a live session, rehydrating it from Redis and the backend
// when this process has not seen it yet. Concurrent rehydrations of one id share a
// single backend fetch.
func (s *SessionService) Store(ctx context.Context, id string) (*session.Store, error) {
	entry, err := s.entry(ctx, id)
	if err != nil {
		return nil, err
	}
	return entry.store, nil
}

// Menu returns the effective navigation of a session.
func (s *SessionService) Menu(ctx context.Context, id string) ([]menu.Node, error) {
	entry, err := s.entry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.view == nil {
		return menu.Filter(s.tree, entry.store.CurrentRoles()), nil
	}
	return entry.view.Current(), nil
}

// Refresh refetches the identity of a session. A failed fetch clears the identity and
// ends the session.
func (s *SessionService) Refresh(ctx context.Context, id string) (*session.Store, error) {
	entry, err := s.entry(ctx, id)
	if err != nil {
		return nil, err
	}

	err = session.Refresh(ctx, entry.store, s.backend.Fetcher(entry.cookies))
	switch {
	case err == nil:
		return entry.store, nil
	case errors.Is(err, session.ErrSuperseded):
		return entry.store, err
	default:
		s.logger.Warn("identity refresh failed", zap.String("session_id", id), zap.Error(err))
		s.Dispose(id)
		s.deleteRecord(id)
		return nil, err
	}
}

// Logout ends the backend session and forgets the console session. Unknown ids are
// ignored.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	entry, err := s.entry(ctx, id)
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return nil
	case err != nil:
		return err
	}

	if err := s.backend.Logout(ctx, entry.cookies); err != nil {
		s.logger.Warn("backend logout failed", zap.String("session_id", id), zap.Error(err))
	}
	entry.setReason(events.ReasonLogout)
	entry.store.ClearIdentity()
	s.Dispose(id)
	return s.repo.Delete(ctx, id)
}

// Dispose closes the store of a session and forgets it. The Redis record is kept.
func (s *SessionService) Dispose(id string) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		s.release(entry)
	}
}

// Active returns the number of sessions held in memory.
func (s *SessionService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SessionService) entry(ctx context.Context, id string) (*sessionEntry, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()

	if ok {
		if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
			entry.setReason(events.ReasonExpired)
			entry.store.ClearIdentity()
			s.Dispose(id)
			s.deleteRecord(id)
			return nil, auth.ErrNoSession
		}
		return entry, nil
	}

	v, err, _ := s.loads.Do(id, func() (interface{}, error) {
		return s.rehydrate(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*sessionEntry), nil
}

func (s *SessionService) rehydrate(ctx context.Context, id string) (*sessionEntry, error) {
	s.mu.Lock()
	if entry, ok := s.entries[id]; ok {
		s.mu.Unlock()
		return entry, nil
	}
	s.mu.Unlock()

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, auth.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if record.Expired(s.now()) {
		s.deleteRecord(id)
		return nil, auth.ErrNoSession
	}

	cookies, err := s.openCookies(record.SealedCookies)
	if err != nil {
		s.logger.Warn("discarding unreadable session", zap.String("session_id", id), zap.Error(err))
		s.deleteRecord(id)
		return nil, auth.ErrNoSession
	}

	entry := s.newEntry(id, cookies, record.ExpiresAt)
	if err := session.Refresh(ctx, entry.store, s.backend.Fetcher(cookies)); err != nil {
		s.release(entry)
		s.logger.Warn("session rehydration failed", zap.String("session_id", id), zap.Error(err))
		s.deleteRecord(id)
		return nil, auth.ErrNoSession
	}

	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	s.logger.Debug("session rehydrated", zap.String("session_id", id))
	return entry, nil
}

func (s *SessionService) newEntry(id string, cookies []*http.Cookie, expiresAt time.Time) *sessionEntry {
	entry := &sessionEntry{
		id:        id,
		store:     session.NewStore(),
		cookies:   cookies,
		expiresAt: expiresAt,
		reason:    events.ReasonRefreshFailed,
	}
	entry.cancel = entry.store.Subscribe(func(change session.Change) {
		s.publish(entry, change)
	})
	if s.tree != nil {
		entry.view = menu.NewView(s.tree, entry.store)
	}
	return entry
}

func (s *SessionService) release(entry *sessionEntry) {
	if entry.cancel != nil {
		entry.cancel()
	}
	if entry.view != nil {
		entry.view.Close()
	}
	entry.store.Close()
}

func (s *SessionService) publish(entry *sessionEntry, change session.Change) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		SessionID: entry.id,
		Timestamp: s.now().UTC(),
	}
	if change.Cleared {
		event.Type = events.EventIdentityCleared
		event.Payload = events.IdentityClearedPayload{Reason: entry.takeReason()}
	} else {
		event.Type = events.EventIdentitySet
		event.Payload = events.IdentitySetPayload{
			UserID: change.Identity.UserID,
			Roles:  change.Identity.Roles.Strings(),
		}
	}
	_ = s.dispatcher.Publish(context.Background(), event)
}

func (s *SessionService) deleteRecord(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete session record failed", zap.String("session_id", id), zap.Error(err))
	}
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *SessionService) sealCookies(cookies []*http.Cookie) ([]byte, error) {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	plain, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	return s.sealer.Seal(plain)
}

func (s *SessionService) openCookies(sealed []byte) ([]*http.Cookie, error) {
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, err
	}
	var stored []storedCookie
	if err := json.Unmarshal(plain, &stored); err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}
