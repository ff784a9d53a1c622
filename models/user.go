package models

// Role names in normalized form (see rbac.NormalizeRole).
const (
	RoleSuperAdmin     = "SUPER_ADMIN"
	RoleSchoolOwner    = "SCHOOL_OWNER"
	RoleSchoolAdmin    = "SCHOOL_ADMIN"
	RoleBranchManager  = "BRANCH_MANAGER"
	RoleTeacher        = "TEACHER"
	RoleStaff          = "STAFF"
	RoleAccountant     = "ACCOUNTANT"
	RoleParkingManager = "PARKING_MANAGER"
	RoleParent         = "PARENT"
	RoleStudent        = "STUDENT"
)

// ScopeAll is the wildcard marker inside User.DataScopes meaning every scope.
const ScopeAll = "*"

// ManagedSchool is a school the user administers.
type ManagedSchool struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ManagedBranch is a branch the user administers. SchoolID is the owning school.
type ManagedBranch struct {
	ID       string `json:"id"`
	SchoolID string `json:"schoolId"`
	Name     string `json:"name"`
}

// ManagedCourse is a course the user administers. BranchID may be empty for
// school-wide courses.
type ManagedCourse struct {
	ID       string `json:"id"`
	SchoolID string `json:"schoolId"`
	BranchID string `json:"branchId,omitempty"`
	Name     string `json:"name"`
}

// ManagedEntities groups everything the user can administer, used to backfill
// owning schools during managed-context resolution.
type ManagedEntities struct {
	Schools  []ManagedSchool `json:"schools,omitempty"`
	Branches []ManagedBranch `json:"branches,omitempty"`
	Courses  []ManagedCourse `json:"courses,omitempty"`
}

// User is the client-side identity and authorization snapshot. It is built at
// login from the credential exchange response merged with token claims,
// refreshed on silent restore, and nulled on logout.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`

	// Role is the current (possibly display-mapped) role; OriginalRole is the
	// role exactly as issued by the server, kept for auditing.
	Role         string `json:"role"`
	OriginalRole string `json:"originalRole"`

	Permissions map[string]bool `json:"permissions"`
	DataScopes  []string        `json:"dataScopes,omitempty"`

	SchoolID  string `json:"schoolId,omitempty"`
	TeacherID string `json:"teacherId,omitempty"`

	Managed ManagedEntities `json:"managedEntities"`

	ActiveSchoolID string `json:"activeSchoolId,omitempty"`
	ActiveBranchID string `json:"activeBranchId,omitempty"`
	ActiveCourseID string `json:"activeCourseId,omitempty"`
}

// Clone returns a deep copy. The session service mutates its internal user
// in place when the managed context changes, so anything handed outside the
// service must be an independent snapshot.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	copied := *u

	if u.Permissions != nil {
		copied.Permissions = make(map[string]bool, len(u.Permissions))
		for k, v := range u.Permissions {
			copied.Permissions[k] = v
		}
	}
	if u.DataScopes != nil {
		copied.DataScopes = append([]string(nil), u.DataScopes...)
	}
	if u.Managed.Schools != nil {
		copied.Managed.Schools = append([]ManagedSchool(nil), u.Managed.Schools...)
	}
	if u.Managed.Branches != nil {
		copied.Managed.Branches = append([]ManagedBranch(nil), u.Managed.Branches...)
	}
	if u.Managed.Courses != nil {
		copied.Managed.Courses = append([]ManagedCourse(nil), u.Managed.Courses...)
	}

	return &copied
}

// HasWildcardScope reports whether the user's scope set contains ScopeAll.
func (u *User) HasWildcardScope() bool {
	for _, s := range u.DataScopes {
		if s == ScopeAll {
			return true
		}
	}
	return false
}
