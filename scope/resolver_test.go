package scope

import (
	"testing"

	"eduadmin-client/models"

	"github.com/stretchr/testify/assert"
)

func managedUser() *models.User {
	return &models.User{
		ID:       "u-1",
		SchoolID: "S-own",
		Managed: models.ManagedEntities{
			Schools: []models.ManagedSchool{
				{ID: "S1", Code: "ADS001", Name: "Main Campus"},
				{ID: "S2", Code: "ADS002", Name: "North Campus"},
			},
			Branches: []models.ManagedBranch{
				{ID: "B1", SchoolID: "S1"},
				{ID: "B3", SchoolID: "S2"},
			},
			Courses: []models.ManagedCourse{
				{ID: "C1", SchoolID: "S1", BranchID: "B1"},
				{ID: "C7", SchoolID: "S2", BranchID: "B3"},
				{ID: "C9", SchoolID: "S2"}, // school-wide course, no branch
			},
		},
	}
}

// TestNormalizeID tests each null-ish spelling
func TestNormalizeID(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "  ", expected: ""},
		{input: "null", expected: ""},
		{input: "NULL", expected: ""},
		{input: " Null ", expected: ""},
		{input: "undefined", expected: ""},
		{input: "UNDEFINED", expected: ""},
		{input: "S1", expected: "S1"},
		{input: "  S1  ", expected: "S1"},
		{input: "nullable-id", expected: "nullable-id"},
	}

	for _, tc := range testCases {
		t.Run("input="+tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeID(tc.input))
		})
	}
}

// TestResolveInitialCachedSelectionWins tests that any stored level overrides defaults
func TestResolveInitialCachedSelectionWins(t *testing.T) {
	stored := models.ManagedContext{SchoolID: "S2"}

	resolved := ResolveInitial(managedUser(), stored, "ADS001")

	assert.Equal(t, models.ManagedContext{SchoolID: "S2"}, resolved)
}

// TestResolveInitialDefaultCodedSchool tests fresh-session default selection
func TestResolveInitialDefaultCodedSchool(t *testing.T) {
	resolved := ResolveInitial(managedUser(), models.ManagedContext{}, "ADS001")

	assert.Equal(t, "S1", resolved.SchoolID)
	assert.Empty(t, resolved.BranchID)
	assert.Empty(t, resolved.CourseID)
}

// TestResolveInitialFallsBackToOwnSchool tests fallback when no default-coded school exists
func TestResolveInitialFallsBackToOwnSchool(t *testing.T) {
	user := managedUser()
	user.Managed.Schools = nil

	resolved := ResolveInitial(user, models.ManagedContext{}, "ADS001")

	assert.Equal(t, "S-own", resolved.SchoolID)
}

// TestResolveInitialBackfillsSchoolFromBranch tests the ownership backfill
func TestResolveInitialBackfillsSchoolFromBranch(t *testing.T) {
	stored := models.ManagedContext{BranchID: "B3"}

	resolved := ResolveInitial(managedUser(), stored, "ADS001")

	assert.Equal(t, models.ManagedContext{SchoolID: "S2", BranchID: "B3"}, resolved)
}

// TestResolveInitialNullishStoredContext tests that null-ish stored values count as absent
func TestResolveInitialNullishStoredContext(t *testing.T) {
	stored := models.ManagedContext{SchoolID: "null", BranchID: "undefined", CourseID: " "}

	resolved := ResolveInitial(managedUser(), stored, "ADS001")

	// All levels were absent, so the default-coded school is selected
	assert.Equal(t, models.ManagedContext{SchoolID: "S1"}, resolved)
}

// TestResolveInitialIsFixedPoint tests that resolving a resolved context changes nothing
func TestResolveInitialIsFixedPoint(t *testing.T) {
	user := managedUser()

	contexts := []models.ManagedContext{
		{},
		{SchoolID: "S2"},
		{BranchID: "B1"},
		{CourseID: "C7"},
		{CourseID: "orphan-course"},
	}

	for _, stored := range contexts {
		first := ResolveInitial(user, stored, "ADS001")
		second := ResolveInitial(user, first, "ADS001")
		assert.Equal(t, first, second, "stored=%+v", stored)
	}
}

// TestBackfillCourseSuppliesBranchAndSchool tests full ancestor recovery
func TestBackfillCourseSuppliesBranchAndSchool(t *testing.T) {
	resolved := Backfill(managedUser(), models.ManagedContext{CourseID: "C7"})

	assert.Equal(t, models.ManagedContext{SchoolID: "S2", BranchID: "B3", CourseID: "C7"}, resolved)
}

// TestBackfillSchoolWideCourse tests a course with no branch
func TestBackfillSchoolWideCourse(t *testing.T) {
	resolved := Backfill(managedUser(), models.ManagedContext{CourseID: "C9"})

	assert.Equal(t, models.ManagedContext{SchoolID: "S2", CourseID: "C9"}, resolved)
}

// TestBackfillUnresolvableOwnership tests that an orphan id leaves school absent
func TestBackfillUnresolvableOwnership(t *testing.T) {
	resolved := Backfill(managedUser(), models.ManagedContext{CourseID: "ghost"})

	assert.Equal(t, models.ManagedContext{CourseID: "ghost"}, resolved)
	assert.Empty(t, resolved.SchoolID)
}

// TestBackfillDoesNotOverwritePresentLevels tests that explicit ids are kept
func TestBackfillDoesNotOverwritePresentLevels(t *testing.T) {
	// S1 disagrees with C7's owning school; explicit selection wins
	resolved := Backfill(managedUser(), models.ManagedContext{SchoolID: "S1", BranchID: "B1", CourseID: "C7"})

	assert.Equal(t, models.ManagedContext{SchoolID: "S1", BranchID: "B1", CourseID: "C7"}, resolved)
}

// TestMergePreservesUntouchedFields tests merge-not-replace semantics
func TestMergePreservesUntouchedFields(t *testing.T) {
	current := models.ManagedContext{SchoolID: "S1", BranchID: "B2", CourseID: "C1"}
	branchID := "B1"

	merged := Merge(managedUser(), current, models.ContextPatch{BranchID: &branchID})

	assert.Equal(t, models.ManagedContext{SchoolID: "S1", BranchID: "B1", CourseID: "C1"}, merged)
}

// TestMergeClearsWithExplicitEmpty tests that a pointer to "" clears a level
func TestMergeClearsWithExplicitEmpty(t *testing.T) {
	current := models.ManagedContext{SchoolID: "S1", BranchID: "B1", CourseID: "C1"}
	empty := ""

	merged := Merge(managedUser(), current, models.ContextPatch{CourseID: &empty})

	assert.Equal(t, models.ManagedContext{SchoolID: "S1", BranchID: "B1"}, merged)
}

// TestMergeCourseOntoEmptyContext tests that selecting a course from nothing
// resolves its whole ancestry
func TestMergeCourseOntoEmptyContext(t *testing.T) {
	courseID := "C7"

	merged := Merge(managedUser(), models.ManagedContext{}, models.ContextPatch{CourseID: &courseID})

	assert.Equal(t, models.ManagedContext{SchoolID: "S2", BranchID: "B3", CourseID: "C7"}, merged)
}

// TestLastSelectionFor tests the secondary cache record shape per level
func TestLastSelectionFor(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      models.ManagedContext
		expected models.LastSelection
		ok       bool
	}{
		{
			name:     "School level",
			ctx:      models.ManagedContext{SchoolID: "S1"},
			expected: models.LastSelection{Type: models.SelectionSchool, SchoolID: "S1"},
			ok:       true,
		},
		{
			name:     "Branch level",
			ctx:      models.ManagedContext{SchoolID: "S1", BranchID: "B1"},
			expected: models.LastSelection{Type: models.SelectionBranch, SchoolID: "S1", BranchID: "B1"},
			ok:       true,
		},
		{
			name:     "Course level",
			ctx:      models.ManagedContext{SchoolID: "S2", BranchID: "B3", CourseID: "C7"},
			expected: models.LastSelection{Type: models.SelectionCourse, SchoolID: "S2", BranchID: "B3", CourseID: "C7"},
			ok:       true,
		},
		{
			name: "Empty context",
			ctx:  models.ManagedContext{},
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, ok := LastSelectionFor(tc.ctx)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, record)
			}
		})
	}
}
