package domain

import (
	"regexp"
	"time"
)

// Tenant is one customer organisation. Slug is the URL-facing identifier
// and is immutable after creation.
type Tenant struct {
	ID        string
	Slug      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidSlug reports whether s is an acceptable tenant slug: lowercase
// alphanumerics and hyphens, no leading/trailing hyphen, max 63 chars.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
