package menu

import (
	"sync"

	"github.com/spec-kit/claims-console/internal/session"
)

// View keeps the effective menu of one store up to date.
type View struct {
	tree  []Node
	store *session.Store

	mu         sync.RWMutex
	cached     []Node
	generation uint64
	cancel     func()
}

// NewView derives the menu from store now and on every identity change.
func NewView(tree []Node, store *session.Store) *View {
	v := &View{tree: tree, store: store}
	v.cancel = store.Subscribe(func(session.Change) { v.recompute() })
	v.recompute()
	return v
}

// Current returns a copy of the effective menu.
func (v *View) Current() []Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneNodes(v.cached)
}

// Close stops following the store.
func (v *View) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// recompute reads the store rather than the Change it was woken by: a delayed
// notification must not overwrite the menu of a newer identity.
func (v *View) recompute() {
	roles, gen := v.store.Snapshot()
	filtered := Filter(v.tree, roles)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen < v.generation {
		return
	}
	v.cached = filtered
	v.generation = gen
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case Leaf:
			v.Roles = v.Roles.Clone()
			out = append(out, v)
		case Group:
			v.Roles = v.Roles.Clone()
			v.Children = cloneNodes(v.Children)
			out = append(out, v)
		}
	}
	return out
}
