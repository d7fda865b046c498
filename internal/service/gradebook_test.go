package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
)

func TestGradeValueTable(t *testing.T) {
	cases := map[string]int{
		"O": 10, "A+": 9, "A": 8, "B+": 7, "B": 6,
		"C+": 5, "C": 4, "D": 3, "P": 5, "F": 0, "NP": 0,
	}
	for grade, want := range cases {
		assert.Equal(t, want, GradeValue(grade), "grade %s", grade)
	}

	assert.Equal(t, 8, GradeValue("a"), "lookup is case-insensitive")
	assert.Equal(t, 9, GradeValue(" a+ "), "lookup trims whitespace")
	assert.Equal(t, 0, GradeValue("Z"), "unknown grades score zero")
	assert.Equal(t, 0, GradeValue(""))
}

func TestParseSubjectGrades(t *testing.T) {
	entries := ParseSubjectGrades("Maths:A, DBMS:B+")
	require.Len(t, entries, 2)
	assert.Equal(t, models.SubjectGradeEntry{Subject: "Maths", Grade: "A", GradeValue: 8}, entries[0])
	assert.Equal(t, models.SubjectGradeEntry{Subject: "DBMS", Grade: "B+", GradeValue: 7}, entries[1])
}

func TestParseSubjectGradesDropsMalformedTokens(t *testing.T) {
	entries := ParseSubjectGrades("Bad, DBMS:B+")
	require.Len(t, entries, 1)
	assert.Equal(t, "DBMS", entries[0].Subject)

	entries = ParseSubjectGrades("A:B:C, Maths:A")
	require.Len(t, entries, 1, "tokens with extra colons are dropped")
	assert.Equal(t, "Maths", entries[0].Subject)

	assert.Empty(t, ParseSubjectGrades(""))
	assert.Empty(t, ParseSubjectGrades(" , , "))
}

func TestParseSubjectGradesPreservesGradeCase(t *testing.T) {
	entries := ParseSubjectGrades("OS:a+")
	require.Len(t, entries, 1)
	assert.Equal(t, "a+", entries[0].Grade, "display keeps the stored spelling")
	assert.Equal(t, 9, entries[0].GradeValue, "scoring still uppercases")
}

func TestBuildAcademicViewAllSemesters(t *testing.T) {
	cgpa := 8.4
	semesters := []models.SemesterRecord{
		{Name: "Semester 1", SGPA: 8.1, Subjects: "Maths:A, Physics:B+"},
		{Name: "Semester 2", SGPA: 8.7, Subjects: "DBMS:O"},
	}

	view := BuildAcademicView(semesters, SemesterAll, &cgpa)

	require.Len(t, view.Academic, 3, "all semesters concatenate in order")
	assert.Equal(t, "Maths", view.Academic[0].Subject)
	assert.Equal(t, "DBMS", view.Academic[2].Subject)
	assert.Equal(t, dto.KnownGPA(8.1), view.SGPA, "SGPA comes from the first listed semester")
	assert.Equal(t, dto.KnownGPA(8.4), view.CGPA)
}

func TestBuildAcademicViewFiltersByName(t *testing.T) {
	semesters := []models.SemesterRecord{
		{Name: "Semester 1", SGPA: 8.1, Subjects: "Maths:A"},
		{Name: "Semester 2", SGPA: 8.7, Subjects: "DBMS:O"},
	}

	view := BuildAcademicView(semesters, "Semester 2", nil)
	require.Len(t, view.Academic, 1)
	assert.Equal(t, "DBMS", view.Academic[0].Subject)
	assert.Equal(t, dto.KnownGPA(8.7), view.SGPA)

	view = BuildAcademicView(semesters, "Semester 9", nil)
	assert.Empty(t, view.Academic, "unmatched filter yields an empty table")
	assert.False(t, view.SGPA.Valid)
}

func TestBuildAcademicViewCGPASentinel(t *testing.T) {
	zero := 0.0
	view := BuildAcademicView(nil, SemesterAll, &zero)
	assert.False(t, view.CGPA.Valid, "stored zero renders as the sentinel")

	view = BuildAcademicView(nil, SemesterAll, nil)
	assert.False(t, view.CGPA.Valid)
}

func TestBuildAcademicViewSGPAZeroIsAValue(t *testing.T) {
	semesters := []models.SemesterRecord{{Name: "Semester 1", SGPA: 0, Subjects: "Maths:F"}}
	view := BuildAcademicView(semesters, SemesterAll, nil)
	assert.True(t, view.SGPA.Valid, "an earned 0.0 SGPA is a value, not the sentinel")
	assert.Equal(t, 0.0, view.SGPA.Value)
}
