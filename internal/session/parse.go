package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/claims-console/internal/domain"
)

// ErrMalformed is returned when the identity payload is not a JSON object.
var ErrMalformed = errors.New("session: malformed identity payload")

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type profilePayload struct {
	ID         flexString      `json:"id"`
	FullName   string          `json:"full_name"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	BranchID   flexString      `json:"branch_id"`
	Roles      json.RawMessage `json:"roles"`
	Permission json.RawMessage `json:"permission"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// Anything else is not an identifier we can use.
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// ParseIdentity normalizes an identity endpoint response into an Identity.
// Both the {"data": {...}} envelope and a bare object are accepted. A missing or
// malformed roles field yields an empty role set; unknown role names are dropped.
func ParseIdentity(payload []byte) (domain.Identity, error) {
	identity, _, err := parseIdentity(payload)
	return identity, err
}

// ParseIdentityReport is ParseIdentity plus the role names that were dropped.
func ParseIdentityReport(payload []byte) (domain.Identity, []string, error) {
	return parseIdentity(payload)
}

func parseIdentity(payload []byte) (domain.Identity, []string, error) {
	body := bytes.TrimSpace(payload)
	if len(body) == 0 || body[0] != '{' {
		return domain.Identity{}, nil, ErrMalformed
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Identity{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '{' {
		body = data
	}

	var profile profilePayload
	if err := json.Unmarshal(body, &profile); err != nil {
		return domain.Identity{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	roles, unknown := decodeRoles(profile.Roles)
	identity := domain.Identity{
		UserID:   string(profile.ID),
		Name:     displayName(profile),
		Email:    strings.TrimSpace(profile.Email),
		BranchID: string(profile.BranchID),
		Roles:    roles,
	}
	if perm := bytes.TrimSpace(profile.Permission); len(perm) > 0 && !bytes.Equal(perm, []byte("null")) {
		identity.Permission = append(json.RawMessage(nil), perm...)
	}
	return identity, unknown, nil
}

func decodeRoles(raw json.RawMessage) (domain.RoleSet, []string) {
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		// The backend sometimes sends role objects instead of names.
		var objects []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &objects); err != nil {
			return domain.RoleSet{}, nil
		}
		for _, obj := range objects {
			names = append(names, obj.Name)
		}
	}
	return domain.ParseRoleSet(names)
}

func displayName(p profilePayload) string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}
