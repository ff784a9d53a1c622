// Package scope resolves and maintains the managed context: which school,
// branch and course the current user's actions are issued under. The
// hierarchy is strict (a branch or course selection always belongs to a
// school) and resolution must attempt to recover a missing owning school
// before ever publishing a context.
package scope

import (
	"strings"

	"eduadmin-client/models"
)

// NormalizeID maps the null-ish identifier spellings that leak out of web
// storage layers to the canonical absent value. Empty string, "null" and
// "undefined" (any case, surrounding whitespace ignored) are all absent.
func NormalizeID(id string) string {
	trimmed := strings.TrimSpace(id)
	switch strings.ToLower(trimmed) {
	case "", "null", "undefined":
		return ""
	}
	return trimmed
}

// Normalize applies NormalizeID to every level of a context.
func Normalize(ctx models.ManagedContext) models.ManagedContext {
	return models.ManagedContext{
		SchoolID: NormalizeID(ctx.SchoolID),
		BranchID: NormalizeID(ctx.BranchID),
		CourseID: NormalizeID(ctx.CourseID),
	}
}

// ResolveInitial computes the context for a fresh session.
//
// Precedence: a stored context with any level present wins over user
// defaults. Without one, the user's managed school carrying the well-known
// default code is selected at school level (branch and course cleared; a
// fresh session lands on a school view, not an arbitrary course), falling
// back to the user's own school. Either way Backfill runs before returning,
// so a branch or course never escapes without an attempt to resolve its
// owning school.
func ResolveInitial(user *models.User, stored models.ManagedContext, defaultSchoolCode string) models.ManagedContext {
	ctx := Normalize(stored)

	if ctx.IsEmpty() {
		ctx = defaultContext(user, defaultSchoolCode)
	}

	return Backfill(user, ctx)
}

// defaultContext picks the starting scope when nothing was cached.
func defaultContext(user *models.User, defaultSchoolCode string) models.ManagedContext {
	if user == nil {
		return models.ManagedContext{}
	}

	if defaultSchoolCode != "" {
		for _, school := range user.Managed.Schools {
			if school.Code == defaultSchoolCode {
				return models.ManagedContext{SchoolID: school.ID}
			}
		}
	}

	return models.ManagedContext{SchoolID: NormalizeID(user.SchoolID)}
}

// Backfill fills absent ancestors from the user's managed entities: a course
// supplies its owning school and branch, a branch supplies its owning school.
// Unresolvable ownership is not an error; the context is returned with the
// school still absent and downstream consumers treat that as unscoped.
// Backfill is idempotent: running it on its own output changes nothing.
func Backfill(user *models.User, ctx models.ManagedContext) models.ManagedContext {
	ctx = Normalize(ctx)
	if user == nil {
		return ctx
	}

	if ctx.CourseID != "" && (ctx.SchoolID == "" || ctx.BranchID == "") {
		if course, ok := findCourse(user, ctx.CourseID); ok {
			if ctx.SchoolID == "" {
				ctx.SchoolID = NormalizeID(course.SchoolID)
			}
			if ctx.BranchID == "" {
				ctx.BranchID = NormalizeID(course.BranchID)
			}
		}
	}

	if ctx.BranchID != "" && ctx.SchoolID == "" {
		if branch, ok := findBranch(user, ctx.BranchID); ok {
			ctx.SchoolID = NormalizeID(branch.SchoolID)
		}
	}

	return ctx
}

// Merge lays a patch over the current context. Nil patch fields are left
// unchanged; pointers to empty (or null-ish) strings clear the level. The
// merged result is backfilled before being returned.
func Merge(user *models.User, current models.ManagedContext, patch models.ContextPatch) models.ManagedContext {
	merged := Normalize(current)

	if patch.SchoolID != nil {
		merged.SchoolID = NormalizeID(*patch.SchoolID)
	}
	if patch.BranchID != nil {
		merged.BranchID = NormalizeID(*patch.BranchID)
	}
	if patch.CourseID != nil {
		merged.CourseID = NormalizeID(*patch.CourseID)
	}

	return Backfill(user, merged)
}

// LastSelectionFor shapes the secondary cache record for a context, keyed by
// the most specific level chosen.
func LastSelectionFor(ctx models.ManagedContext) (models.LastSelection, bool) {
	level := ctx.Level()
	if level == "" {
		return models.LastSelection{}, false
	}

	record := models.LastSelection{Type: level, SchoolID: ctx.SchoolID}
	switch level {
	case models.SelectionCourse:
		record.BranchID = ctx.BranchID
		record.CourseID = ctx.CourseID
	case models.SelectionBranch:
		record.BranchID = ctx.BranchID
	}

	return record, true
}

func findBranch(user *models.User, id string) (models.ManagedBranch, bool) {
	for _, branch := range user.Managed.Branches {
		if branch.ID == id {
			return branch, true
		}
	}
	return models.ManagedBranch{}, false
}

func findCourse(user *models.User, id string) (models.ManagedCourse, bool) {
	for _, course := range user.Managed.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return models.ManagedCourse{}, false
}
