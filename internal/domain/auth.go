package domain

import "time"

// SessionRecord is the durable part of a console session. It carries the sealed
// backend cookie only; role state is always refetched from the backend.
type SessionRecord struct {
	ID            string    `json:"id"`
	SealedCookies []byte    `json:"sealed_cookies"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}
