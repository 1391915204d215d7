package dto

import "github.com/spec-kit/claims-console/internal/menu"

// MenuNode is the wire form of a menu entry. Groups carry children and no path.
type MenuNode struct {
	ID          int        `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Path        string     `json:"path,omitempty"`
	Children    []MenuNode `json:"children,omitempty"`
}

// NewMenu maps a filtered tree.
func NewMenu(tree []menu.Node) []MenuNode {
	out := make([]MenuNode, 0, len(tree))
	for _, n := range tree {
		switch v := n.(type) {
		case menu.Leaf:
			out = append(out, MenuNode{ID: v.ID, Kind: "leaf", Title: v.Title, Description: v.Description, Path: v.Path})
		case menu.Group:
			children := NewMenu(v.Children)
			out = append(out, MenuNode{ID: v.ID, Kind: "group", Title: v.Title, Children: children})
		}
	}
	return out
}
