package service

import (
	"strings"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
)

// SemesterAll selects every semester when building an academic view.
const SemesterAll = "all"

// gradePoints is the fixed 10-point letter-grade table. Codes outside the
// table score 0, the same as a fail, so a typo'd grade drags the table down
// instead of aborting the whole report.
var gradePoints = map[string]int{
	"O":  10,
	"A+": 9,
	"A":  8,
	"B+": 7,
	"B":  6,
	"C+": 5,
	"C":  4,
	"D":  3,
	"P":  5,
	"F":  0,
	"NP": 0,
}

// GradeValue maps a letter grade to its point value. Lookup is
// case-insensitive; unknown codes map to 0.
func GradeValue(grade string) int {
	return gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
}

// ParseSubjectGrades decodes a compact "Subject:Grade, Subject:Grade" string
// into ordered entries. Tokens that are empty or not exactly one
// subject/grade pair are dropped silently so one malformed entry cannot
// corrupt the others; the worst case is an empty slice, never an error.
func ParseSubjectGrades(compact string) []models.SubjectGradeEntry {
	entries := []models.SubjectGradeEntry{}
	for _, token := range strings.Split(compact, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		parts := strings.Split(token, ":")
		if len(parts) != 2 {
			continue
		}
		subject := strings.TrimSpace(parts[0])
		grade := strings.TrimSpace(parts[1])
		entries = append(entries, models.SubjectGradeEntry{
			Subject:    subject,
			Grade:      grade,
			GradeValue: GradeValue(grade),
		})
	}
	return entries
}

// AcademicView bundles the derived grade table with its averages.
type AcademicView struct {
	Academic []models.SubjectGradeEntry
	SGPA     dto.GPA
	CGPA     dto.GPA
}

// BuildAcademicView applies the semester filter and derives the grade table.
// Filtering by name is exact-match; an unmatched name yields an empty table.
// With SemesterAll the SGPA shown is the first listed semester's, a quirk
// carried over from the source system rather than a cumulative average.
// CGPA always comes from the student record and ignores the filter.
func BuildAcademicView(semesters []models.SemesterRecord, selected string, cgpa *float64) AcademicView {
	filtered := semesters
	if selected != "" && selected != SemesterAll {
		filtered = nil
		for _, sem := range semesters {
			if sem.Name == selected {
				filtered = append(filtered, sem)
			}
		}
	}

	view := AcademicView{Academic: []models.SubjectGradeEntry{}}
	for _, sem := range filtered {
		view.Academic = append(view.Academic, ParseSubjectGrades(sem.Subjects)...)
	}
	if len(filtered) > 0 {
		view.SGPA = dto.KnownGPA(filtered[0].SGPA)
	}
	view.CGPA = recordCGPA(cgpa)
	return view
}

// recordCGPA reproduces the source system's `cgpa || null` fallthrough: a
// stored zero renders as the sentinel, not as 0.0.
func recordCGPA(v *float64) dto.GPA {
	if v == nil || *v == 0 {
		return dto.GPA{}
	}
	return dto.KnownGPA(*v)
}
