package domain

import "time"

// Membership links a user to a tenant with a role set. TokenVersion is the
// revocation lever: every issued token snapshots it, and bumping it on the
// membership invalidates all tokens carrying older values.
type Membership struct {
	ID           string
	UserID       string
	TenantID     string
	Roles        []string
	Active       bool
	TokenVersion int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the membership carries the given role.
func (m Membership) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}
