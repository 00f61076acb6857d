package tenantsdk

// AdminRole is the role that bypasses tenant and role checks. Platform
// operators carry it; regular tenant users never do.
const AdminRole = "platform_admin"

// Guard enforces tenant scoping in resource services. Given the Session a
// validate call produced, it answers "may this user act on tenant X as
// role Y". All failures surface as *APIError with user-facing Portuguese
// descriptions.
type Guard struct {
	// AdminRole overrides the default bypass role when set.
	AdminRole string
}

func (g Guard) adminRole() string {
	if g.AdminRole != "" {
		return g.AdminRole
	}
	return AdminRole
}

// RequireTenant checks the session is scoped to the given tenant slug.
// Platform admins pass regardless of the token's tenant.
func (g Guard) RequireTenant(s *Session, slug string) error {
	if s == nil {
		return ErrInvalidToken
	}
	if slug == "" {
		return ErrTenantNotFound
	}
	if s.HasRole(g.adminRole()) {
		return nil
	}
	if s.TenantSlug != slug {
		return ErrSlugMismatch
	}
	return nil
}

// RequireRole checks the session carries the role within its tenant.
// Platform admins bypass the check.
func (g Guard) RequireRole(s *Session, role string) error {
	if s == nil {
		return ErrInvalidToken
	}
	if s.HasRole(g.adminRole()) {
		return nil
	}
	if !s.HasRole(role) {
		return ErrInsufficientPermission
	}
	return nil
}

// RequireTenantRole combines both checks.
func (g Guard) RequireTenantRole(s *Session, slug, role string) error {
	if err := g.RequireTenant(s, slug); err != nil {
		return err
	}
	return g.RequireRole(s, role)
}

// Decision is the outcome of a Check call, shaped for UI consumption: a
// boolean plus the user-facing reason when access is denied. It is a
// convenience over already-validated session state, not a security
// boundary; the server-side validate endpoint remains the real check.
type Decision struct {
	HasAccess   bool
	AccessError string
	TenantSlug  string
	Roles       []string
}

// Check evaluates the session against an optional required role and, unless
// requireTenant is false, the given tenant slug. requireTenant=false grants
// platform admins global access with no tenant context.
func (g Guard) Check(s *Session, requiredRole, slug string, requireTenant bool) Decision {
	d := Decision{}
	if s != nil {
		d.TenantSlug = s.TenantSlug
		d.Roles = s.Roles
	}

	if requiredRole != "" {
		if err := g.RequireRole(s, requiredRole); err != nil {
			d.AccessError = errDescription(err)
			return d
		}
	}

	if !requireTenant && s != nil && s.HasRole(g.adminRole()) {
		d.HasAccess = true
		return d
	}

	if err := g.RequireTenant(s, slug); err != nil {
		d.AccessError = errDescription(err)
		return d
	}

	d.HasAccess = true
	return d
}

func errDescription(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Description
	}
	return err.Error()
}
