package dto

import (
	"encoding/json"

	"github.com/spec-kit/claims-console/internal/domain"
)

// IdentityResponse is the identity snapshot returned to the console.
type IdentityResponse struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	BranchID   string          `json:"branch_id,omitempty"`
	Roles      []string        `json:"roles"`
	RoleID     int             `json:"role_id,omitempty"`
	RoleLabel  string          `json:"role_label,omitempty"`
	Permission json.RawMessage `json:"permission,omitempty"`
}

// NewIdentityResponse maps an identity. The role id and label come from the
// primary role when it has one.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	resp := IdentityResponse{
		UserID:     identity.UserID,
		Name:       identity.Name,
		Email:      identity.Email,
		BranchID:   identity.BranchID,
		Roles:      identity.Roles.Strings(),
		Permission: identity.Permission,
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if role, ok := identity.PrimaryRole(); ok {
		if id, ok := domain.RoleIDOf(role); ok {
			resp.RoleID = int(id)
			resp.RoleLabel = domain.RoleLabel(id)
		}
	}
	return resp
}

// AccessResponse reports a single gate decision.
type AccessResponse struct {
	Allowed bool `json:"allowed"`
}

// PageResponse describes an admitted console page.
type PageResponse struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ActivityEntry is one row of the session access trail.
type ActivityEntry struct {
	EventType  string   `json:"event_type"`
	Subject    string   `json:"subject,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	Roles      []string `json:"roles"`
	OccurredAt string   `json:"occurred_at"`
}
