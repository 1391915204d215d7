package domain

import "encoding/json"

// Identity is the authenticated principal of a console session.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	BranchID string
	// Roles is never nil after parsing; an empty set means the principal holds no role.
	Roles RoleSet
	// Permission is the backend's permissions payload, kept opaque.
	Permission json.RawMessage
}

// Clone returns a deep copy so snapshots can be handed to readers.
func (i Identity) Clone() Identity {
	out := i
	out.Roles = i.Roles.Clone()
	if out.Roles == nil {
		out.Roles = RoleSet{}
	}
	if i.Permission != nil {
		out.Permission = append(json.RawMessage(nil), i.Permission...)
	}
	return out
}

// PrimaryRole is the first assigned role; the backend treats it as the user's role setting.
func (i Identity) PrimaryRole() (Role, bool) {
	if len(i.Roles) == 0 {
		return "", false
	}
	return i.Roles[0], true
}
