package dto

import (
	"time"

	"github.com/noah-isme/student-records-api/internal/models"
)

// ProfileBlock summarises the student at the top of the dashboard.
type ProfileBlock struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	CGPA      GPA    `json:"cgpa"`
	Status    string `json:"status"`
}

// AttendanceView mirrors the stored snapshot, zero-valued when none exists.
type AttendanceView struct {
	SemesterAttendance    float64  `json:"semesterAttendance"`
	LowAttendanceSubjects []string `json:"lowAttendanceSubjects"`
}

// AttendanceEvaluation carries the two independent alert conditions derived
// from a snapshot.
type AttendanceEvaluation struct {
	Percentage          float64  `json:"percentage"`
	Alert               bool     `json:"alert"`
	AlertReason         string   `json:"alertReason,omitempty"`
	LowAttendanceNotice string   `json:"lowAttendanceNotice,omitempty"`
	FlaggedSubjects     []string `json:"flaggedSubjects,omitempty"`
}

// CalendarEventView projects an academic calendar entry.
type CalendarEventView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	ColorTag    string    `json:"colorTag"`
}

// UpcomingEventView projects an institution event.
type UpcomingEventView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	EventType   string    `json:"eventType"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// AdminStats summarises workload counters for the admin landing page.
type AdminStats struct {
	TotalStudents       int `json:"totalStudents"`
	PendingCertificates int `json:"pendingCertificates"`
	UpcomingEvents      int `json:"upcomingEvents"`
}

// DashboardResponse is the complete student dashboard payload.
type DashboardResponse struct {
	Profile        ProfileBlock              `json:"studentProfile"`
	Schedule       models.WeeklyScheduleGrid `json:"schedule"`
	Attendance     AttendanceView            `json:"attendance"`
	Alerts         AttendanceEvaluation      `json:"alerts"`
	CalendarEvents []CalendarEventView       `json:"calendarEvents"`
	UpcomingEvents []UpcomingEventView       `json:"upcomingEvents"`
}
