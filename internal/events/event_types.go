package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentitySet     EventType = "identity_set"
	EventIdentityCleared EventType = "identity_cleared"
	EventAccessDenied    EventType = "access_denied"
)

// Event is emitted by the session and gating layers.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// IdentitySetPayload payload.
type IdentitySetPayload struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

// IdentityClearedPayload payload.
type IdentityClearedPayload struct {
	Reason string `json:"reason"`
}

// AccessDeniedPayload payload. Subject is the page path or action name.
type AccessDeniedPayload struct {
	Subject string   `json:"subject"`
	UserID  string   `json:"user_id,omitempty"`
	Roles   []string `json:"roles"`
}

// Reasons attached to IdentityClearedPayload.
const (
	ReasonLogout        = "logout"
	ReasonRefreshFailed = "refresh_failed"
	ReasonExpired       = "expired"
)
