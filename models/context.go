package models

// SelectionLevel identifies the most specific level of a context selection.
type SelectionLevel string

const (
	SelectionSchool SelectionLevel = "school"
	SelectionBranch SelectionLevel = "branch"
	SelectionCourse SelectionLevel = "course"
)

// ManagedContext is the school/branch/course scope every subsequent data
// request is issued under. Empty string means the level is not selected.
// Invariant: if CourseID or BranchID is set, resolution must have attempted to
// backfill the owning SchoolID before the context was published.
type ManagedContext struct {
	SchoolID string `json:"schoolId,omitempty"`
	BranchID string `json:"branchId,omitempty"`
	CourseID string `json:"courseId,omitempty"`
}

// IsEmpty reports whether no level is selected.
func (c ManagedContext) IsEmpty() bool {
	return c.SchoolID == "" && c.BranchID == "" && c.CourseID == ""
}

// Level returns the most specific selected level, or "" for an empty context.
func (c ManagedContext) Level() SelectionLevel {
	switch {
	case c.CourseID != "":
		return SelectionCourse
	case c.BranchID != "":
		return SelectionBranch
	case c.SchoolID != "":
		return SelectionSchool
	}
	return ""
}

// ContextPatch is a partial context update. Nil fields are left unchanged by
// SetManagedContext; pointers to "" clear the corresponding level.
type ContextPatch struct {
	SchoolID *string `json:"schoolId,omitempty"`
	BranchID *string `json:"branchId,omitempty"`
	CourseID *string `json:"courseId,omitempty"`
}

// LastSelection is the secondary cache record written on every context change,
// keyed by the most specific level the user chose.
type LastSelection struct {
	Type     SelectionLevel `json:"type"`
	SchoolID string         `json:"schoolId,omitempty"`
	BranchID string         `json:"branchId,omitempty"`
	CourseID string         `json:"courseId,omitempty"`
}
