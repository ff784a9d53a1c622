package rbac

import "eduadmin-client/models"

// directGrants lists which roles each role directly contains. The runtime
// table is the transitive closure of these edges, so role checks are a single
// lookup, never a traversal. Owner/admin reach over lower roles is expressed
// here and only here; nothing elsewhere special-cases "is admin".
var directGrants = map[string][]string{
	models.RoleSuperAdmin:     {models.RoleSchoolOwner, models.RoleParkingManager},
	models.RoleSchoolOwner:    {models.RoleSchoolAdmin, models.RoleAccountant},
	models.RoleSchoolAdmin:    {models.RoleBranchManager},
	models.RoleBranchManager:  {models.RoleTeacher, models.RoleStaff},
	models.RoleTeacher:        {},
	models.RoleStaff:          {},
	models.RoleAccountant:     {},
	models.RoleParkingManager: {models.RoleStaff},
	models.RoleParent:         {},
	models.RoleStudent:        {},
}

// inheritanceClosure is the precomputed transitive closure, keyed by
// normalized role name. Every entry contains the role itself.
var inheritanceClosure = BuildClosure(directGrants)

// BuildClosure expands direct containment edges into the full transitive
// closure. Cycles are tolerated (members of a cycle simply imply each other).
func BuildClosure(direct map[string][]string) map[string]map[string]bool {
	closure := make(map[string]map[string]bool, len(direct))

	var expand func(role string, into map[string]bool)
	expand = func(role string, into map[string]bool) {
		if into[role] {
			return
		}
		into[role] = true
		for _, child := range direct[role] {
			expand(NormalizeRole(child), into)
		}
	}

	for role := range direct {
		normalized := NormalizeRole(role)
		set := make(map[string]bool)
		expand(normalized, set)
		closure[normalized] = set
	}

	return closure
}

// Implies reports whether holding role grants the capabilities of implied.
// Both names are expected in normalized form. A role missing from the table
// implies exactly itself.
func Implies(role, implied string) bool {
	if set, ok := inheritanceClosure[role]; ok {
		return set[implied]
	}
	return role == implied
}

// ImpliedRoles returns a copy of the closure entry for a normalized role,
// defaulting to the singleton set.
func ImpliedRoles(role string) map[string]bool {
	set, ok := inheritanceClosure[role]
	if !ok {
		return map[string]bool{role: true}
	}
	out := make(map[string]bool, len(set))
	for r := range set {
		out[r] = true
	}
	return out
}
