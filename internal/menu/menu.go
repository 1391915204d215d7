// Package menu models the console navigation tree and derives the effective menu
// for an identity.
package menu

import (
	"errors"
	"fmt"

	"github.com/spec-kit/claims-console/internal/auth"
	"github.com/spec-kit/claims-console/internal/domain"
)

// Node is either a Leaf or a Group.
type Node interface {
	Required() domain.RoleSet
	Label() string
	node()
}

// Leaf is a navigable entry.
type Leaf struct {
	ID          int
	Title       string
	Description string
	Path        string
	Roles       domain.RoleSet
}

// Group only groups its children; it is not navigable on its own.
type Group struct {
	ID       int
	Title    string
	Roles    domain.RoleSet
	Children []Node
}

// Required returns the leaf's gate.
func (l Leaf) Required() domain.RoleSet { return l.Roles }

// Label returns the leaf title.
func (l Leaf) Label() string { return l.Title }

func (Leaf) node() {}

// Required returns the group's own gate.
func (g Group) Required() domain.RoleSet { return g.Roles }

// Label returns the group title.
func (g Group) Label() string { return g.Title }

func (Group) node() {}

var (
	ErrLeafWithoutPath  = errors.New("menu: leaf has no path")
	ErrEmptyGroup       = errors.New("menu: group has no children")
	ErrUnknownNode      = errors.New("menu: unknown node type")
	ErrUnregisteredRole = errors.New("menu: role not in registry")
)

// Validate checks the structural invariants of a tree.
func Validate(tree []Node) error {
	for _, n := range tree {
		if err := validateNode(n); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n Node) error {
	for _, role := range n.Required() {
		if !role.Valid() {
			return fmt.Errorf("%w: %q on %q", ErrUnregisteredRole, role, n.Label())
		}
	}
	switch v := n.(type) {
	case Leaf:
		if v.Path == "" {
			return fmt.Errorf("%w: %q", ErrLeafWithoutPath, v.Title)
		}
	case Group:
		if len(v.Children) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyGroup, v.Title)
		}
		for _, child := range v.Children {
			if err := validateNode(child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
	return nil
}

// Filter returns the nodes of tree visible to current. Every node is gated on its
// own role set only: a group whose gate passes is kept even when none of its
// children are, so consumers may receive empty groups.
func Filter(tree []Node, current domain.RoleSet) []Node {
	out := make([]Node, 0, len(tree))
	for _, n := range tree {
		if !auth.CanAccess(n.Required(), current) {
			continue
		}
		switch v := n.(type) {
		case Leaf:
			v.Roles = v.Roles.Clone()
			out = append(out, v)
		case Group:
			v.Roles = v.Roles.Clone()
			v.Children = Filter(v.Children, current)
			out = append(out, v)
		}
	}
	return out
}

// Paths lists the leaf paths of tree in depth-first order.
func Paths(tree []Node) []string {
	var paths []string
	for _, n := range tree {
		switch v := n.(type) {
		case Leaf:
			paths = append(paths, v.Path)
		case Group:
			paths = append(paths, Paths(v.Children)...)
		}
	}
	return paths
}
