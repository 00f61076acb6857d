package domain

import "time"

// AccessCode represents a one-time access code issuance. Only the
// fingerprint of the code is stored; the plaintext exists client-side only.
type AccessCode struct {
	ID        string
	UserID    string
	TenantID  string
	CodeHash  string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c AccessCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Used reports whether the code has already been consumed.
func (c AccessCode) Used() bool {
	return c.UsedAt != nil
}
