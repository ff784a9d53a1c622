package rbac

import "strings"

// NormalizeRole canonicalizes a role name: trims surrounding whitespace,
// collapses internal whitespace runs, converts space and dash separators to
// underscores and uppercases the result. "school admin", " School-Admin " and
// "SCHOOL_ADMIN" all normalize to "SCHOOL_ADMIN".
func NormalizeRole(role string) string {
	parts := strings.Fields(strings.ReplaceAll(role, "-", " "))
	return strings.ToUpper(strings.Join(parts, "_"))
}

// displaySwap relabels roles for presentation. The product currently renders
// SCHOOL_OWNER and SCHOOL_ADMIN as each other; the mapping is isolated here
// so removing it is a one-line change. See DESIGN.md for the open question on
// whether the swap is intentional.
var displaySwap = map[string]string{
	"SCHOOL_OWNER": "SCHOOL_ADMIN",
	"SCHOOL_ADMIN": "SCHOOL_OWNER",
}

// DisplayRole returns the label shown in the UI for a normalized role name.
// Roles without a mapping display as themselves.
func DisplayRole(role string) string {
	normalized := NormalizeRole(role)
	if swapped, ok := displaySwap[normalized]; ok {
		return swapped
	}
	return normalized
}
