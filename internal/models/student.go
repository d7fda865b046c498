package models

import "time"

// StudentStatus enumerates enrollment lifecycle states.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusOnHold    StudentStatus = "On Hold"
	StudentStatusGraduated StudentStatus = "Graduated"
)

// Valid reports whether the status is one of the known values.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusOnHold || s == StudentStatusGraduated
}

// Student is the master record for a learner. CGPA is a pointer so a record
// without a cumulative average stays distinguishable from a 0.0 average.
type Student struct {
	ID          string        `db:"id" json:"id"`
	UserID      *string       `db:"user_id" json:"user_id,omitempty"`
	StudentID   string        `db:"student_id" json:"student_id"`
	Name        string        `db:"name" json:"name"`
	Course      string        `db:"course" json:"course"`
	CGPA        *float64      `db:"cgpa" json:"cgpa,omitempty"`
	Backlogs    int           `db:"backlogs" json:"backlogs"`
	Status      StudentStatus `db:"status" json:"status"`
	Photo       string        `db:"photo" json:"photo"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
	LastUpdated time.Time     `db:"last_updated" json:"last_updated"`
}

// SemesterRecord stores one semester's outcome. Subjects holds the compact
// "Subject:Grade, Subject:Grade" encoding; parsing happens at read time.
type SemesterRecord struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_ref" json:"-"`
	Name      string    `db:"name" json:"name"`
	SGPA      float64   `db:"sgpa" json:"sgpa"`
	Subjects  string    `db:"subjects" json:"subjects"`
	Position  int       `db:"position" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// SubjectGradeEntry is derived from a compact subject string, never persisted.
type SubjectGradeEntry struct {
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	GradeValue int    `json:"gradeValue"`
}

// Skill records self-reported proficiency on a 0-100 scale.
type Skill struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_ref" json:"-"`
	Name      string    `db:"name" json:"name"`
	Level     int       `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Feedback is the single advisory note an admin keeps per student.
type Feedback struct {
	StudentID string     `db:"student_ref" json:"-"`
	Text      string     `db:"text" json:"text"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
	Course string
	Status string
}
