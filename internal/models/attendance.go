package models

import (
	"time"

	"github.com/lib/pq"
)

// AttendanceStatus marks a single attendance event.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// AttendanceSnapshot is the per-student summary. One row per student; an
// administrative update overwrites the previous value, no history is kept.
type AttendanceSnapshot struct {
	StudentID             string         `db:"student_ref" json:"-"`
	SemesterAttendance    float64        `db:"semester_attendance" json:"semesterAttendance"`
	LowAttendanceSubjects pq.StringArray `db:"low_attendance_subjects" json:"lowAttendanceSubjects"`
	UpdatedAt             time.Time      `db:"updated_at" json:"-"`
}

// AttendanceEvent is the alternate event-log representation: one dated
// present/absent mark, optionally scoped to a subject.
type AttendanceEvent struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_ref" json:"-"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Subject   string           `db:"subject" json:"subject"`
	CreatedAt time.Time        `db:"created_at" json:"-"`
}

// AttendanceEventFilter narrows event history queries.
type AttendanceEventFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
}
