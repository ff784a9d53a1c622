// Package rbac evaluates the current user's permissions, roles and data
// scopes. All predicates are pure and synchronous over the user snapshot
// they were built from; they perform no I/O and are safe to call on every
// render. They exist for UI gating only; the server remains the authority
// on every authorization decision.
package rbac

import "eduadmin-client/models"

// Evaluator exposes boolean predicates over one User snapshot. A nil user
// (logged out) fails every check.
type Evaluator struct {
	user *models.User
}

// NewEvaluator builds an evaluator for the given snapshot.
func NewEvaluator(user *models.User) *Evaluator {
	return &Evaluator{user: user}
}

// HasPermission reports whether the permission key is explicitly granted.
// An absent key is a denial; wildcard expansion happens server-side before
// the permissions map reaches the client.
func (e *Evaluator) HasPermission(key string) bool {
	if e.user == nil {
		return false
	}
	return e.user.Permissions[key]
}

// HasAnyPermission reports whether at least one of the keys is granted.
func (e *Evaluator) HasAnyPermission(keys ...string) bool {
	for _, key := range keys {
		if e.HasPermission(key) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every key is granted. An empty list is
// vacuously true.
func (e *Evaluator) HasAllPermissions(keys ...string) bool {
	for _, key := range keys {
		if !e.HasPermission(key) {
			return false
		}
	}
	return true
}

// HasRole reports whether the user's role contains the queried role under
// the inheritance table. Both sides are normalized first.
func (e *Evaluator) HasRole(role string) bool {
	if e.user == nil {
		return false
	}
	return Implies(NormalizeRole(e.user.Role), NormalizeRole(role))
}

// HasDataScope reports whether the user's scope set contains the exact scope
// string or the wildcard marker.
func (e *Evaluator) HasDataScope(scope string) bool {
	if e.user == nil {
		return false
	}
	if e.user.HasWildcardScope() {
		return true
	}
	for _, s := range e.user.DataScopes {
		if s == scope {
			return true
		}
	}
	return false
}
