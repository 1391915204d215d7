// Package gate decides whether a unit of content or behaviour is shown for the
// current identity, substituting a fallback when it is not.
package gate

import (
	"sync"

	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/session"
	apperrors "github.com/spec-kit/claims-console/pkg/util"
)

// NoAccessMessage is the generic placeholder shown for denied pages. It never
// names the roles that would have been required.
const NoAccessMessage = apperrors.NoAccessMessage

// RoleSource yields the roles of the current identity.
type RoleSource interface {
	CurrentRoles() domain.RoleSet
}

// Roles is a fixed RoleSource.
type Roles domain.RoleSet

// CurrentRoles returns r.
func (r Roles) CurrentRoles() domain.RoleSet {
	return domain.RoleSet(r)
}

// Allowed evaluates required against src. A nil src is anonymous.
func Allowed(src RoleSource, required domain.RoleSet) bool {
	var current domain.RoleSet
	if src != nil {
		current = src.CurrentRoles()
	}
	return auth.CanAccess(required, current)
}

// Resolve returns protected when access is allowed, fallback otherwise.
func Resolve[T any](src RoleSource, required domain.RoleSet, protected, fallback T) T {
	if Allowed(src, required) {
		return protected
	}
	return fallback
}

// Render lazily builds protected or fallback. A nil fallback yields the zero value.
func Render[T any](src RoleSource, required domain.RoleSet, protected, fallback func() T) T {
	if Allowed(src, required) {
		return protected()
	}
	var zero T
	if fallback == nil {
		return zero
	}
	return fallback()
}

// Watch reports the decision for required now and after every identity change
// of store. The returned function stops the updates. Calls to fn are serialized
// and never report a decision older than one already reported; fn must not
// write to store.
func Watch(store *session.Store, required domain.RoleSet, fn func(allowed bool)) func() {
	w := &watcher{store: store, required: required.Clone(), fn: fn}
	cancel := store.Subscribe(func(session.Change) { w.report() })
	w.report()
	return cancel
}

type watcher struct {
	store    *session.Store
	required domain.RoleSet
	fn       func(allowed bool)

	mu         sync.Mutex
	reported   bool
	generation uint64
}

func (w *watcher) report() {
	w.mu.Lock()
	defer w.mu.Unlock()
	current, gen := w.store.Snapshot()
	if w.reported && gen <= w.generation {
		return
	}
	w.reported = true
	w.generation = gen
	w.fn(auth.CanAccess(w.required, current))
}
