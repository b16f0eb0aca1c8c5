package usecase

// Caller roles, as resolved by the upstream auth layer.
const (
	RoleAdmin     = "admin"
	RolePrincipal = "principal"
	RoleTeacher   = "teacher"
)

// Caller is the authenticated identity handed down by the gateway.
type Caller struct {
	StaffID    int64
	Role       string
	CanViewAll bool
}

// Scope is the visibility predicate derived from the caller. Restricted
// scopes see only leads assigned to StaffID.
type Scope struct {
	Restricted bool
	StaffID    int64
}

// ResolveScope maps a caller onto a scope. Administrators and principals see
// everything; teachers are restricted unless granted view-all. Unknown roles
// fall back to the most restrictive scope.
func ResolveScope(c Caller) Scope {
	switch c.Role {
	case RoleAdmin, RolePrincipal:
		return Scope{}
	case RoleTeacher:
		if c.CanViewAll {
			return Scope{}
		}
	}
	return Scope{Restricted: true, StaffID: c.StaffID}
}

// CanMutate gates single-lead mutations: a restricted caller may only touch
// leads currently assigned to them. Callers must check existence first so a
// denied request comes back as a 403, not a 404.
func (s Scope) CanMutate(ownerID *int64) bool {
	if !s.Restricted {
		return true
	}
	return ownerID != nil && *ownerID == s.StaffID
}
