package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
)

// dashboardStudentsMock satisfies the student repository consumers of every
// sibling service the dashboard composes.
type dashboardStudentsMock struct {
	student *models.Student
	total   int
}

func (m *dashboardStudentsMock) List(context.Context, models.StudentFilter, int, int) ([]models.Student, int, error) {
	return []models.Student{*m.student}, m.total, nil
}

func (m *dashboardStudentsMock) FindByIDOrStudentID(context.Context, string) (*models.Student, error) {
	return m.student, nil
}

func (m *dashboardStudentsMock) FindByUserID(context.Context, string) (*models.Student, error) {
	return m.student, nil
}

func (m *dashboardStudentsMock) Create(context.Context, *models.Student) error { return nil }
func (m *dashboardStudentsMock) Update(context.Context, *models.Student) error { return nil }
func (m *dashboardStudentsMock) Delete(context.Context, string) error          { return nil }

func (m *dashboardStudentsMock) Count(context.Context) (int, error) { return m.total, nil }

func (m *dashboardStudentsMock) AddSemester(context.Context, *models.SemesterRecord) error {
	return nil
}

func (m *dashboardStudentsMock) ListSemesters(context.Context, string) ([]models.SemesterRecord, error) {
	return nil, nil
}

func (m *dashboardStudentsMock) AddSkill(context.Context, string, models.Skill) error { return nil }

func (m *dashboardStudentsMock) UpsertFeedback(context.Context, string, string, time.Time) error {
	return nil
}

type dashboardSlotsMock struct {
	slots []models.ScheduleSlot
}

func (m *dashboardSlotsMock) ListByStudent(context.Context, string) ([]models.ScheduleSlot, error) {
	return m.slots, nil
}

func (m *dashboardSlotsMock) ReplaceDay(context.Context, string, string, []models.ScheduleSlot) error {
	return nil
}

func (m *dashboardSlotsMock) DeleteDay(context.Context, string, string) error { return nil }

type dashboardAttendanceMock struct {
	snapshot *models.AttendanceSnapshot
}

func (m *dashboardAttendanceMock) GetSnapshot(context.Context, string) (*models.AttendanceSnapshot, error) {
	return m.snapshot, nil
}

func (m *dashboardAttendanceMock) PutSnapshot(context.Context, *models.AttendanceSnapshot) error {
	return nil
}

func (m *dashboardAttendanceMock) InsertEvent(context.Context, *models.AttendanceEvent) error {
	return nil
}

func (m *dashboardAttendanceMock) ListEvents(context.Context, models.AttendanceEventFilter) ([]models.AttendanceEvent, error) {
	return nil, nil
}

func (m *dashboardAttendanceMock) CountEvents(context.Context, string) (int, int, error) {
	return 0, 0, nil
}

type dashboardEventsMock struct {
	upcoming int
}

func (m *dashboardEventsMock) Create(context.Context, *models.Event) error { return nil }

func (m *dashboardEventsMock) FindByID(context.Context, string) (*models.Event, error) {
	return nil, nil
}

func (m *dashboardEventsMock) List(context.Context, models.EventFilter) ([]models.Event, error) {
	return nil, nil
}

func (m *dashboardEventsMock) ListUpcoming(context.Context, time.Time, int) ([]models.Event, error) {
	return nil, nil
}

func (m *dashboardEventsMock) CountUpcoming(context.Context, time.Time) (int, error) {
	return m.upcoming, nil
}

func (m *dashboardEventsMock) Update(context.Context, *models.Event) error { return nil }
func (m *dashboardEventsMock) Delete(context.Context, string) error        { return nil }

func (m *dashboardEventsMock) ListCalendar(context.Context, time.Time, time.Time) ([]models.CalendarEvent, error) {
	return nil, nil
}

type dashboardCertsMock struct {
	pending int
}

func (m *dashboardCertsMock) Create(context.Context, *models.Certificate) error { return nil }

func (m *dashboardCertsMock) FindByID(context.Context, string) (*models.Certificate, error) {
	return nil, nil
}

func (m *dashboardCertsMock) ListByStudent(context.Context, string) ([]models.Certificate, error) {
	return nil, nil
}

func (m *dashboardCertsMock) ListByStatus(context.Context, models.CertificateStatus) ([]models.Certificate, error) {
	return nil, nil
}

func (m *dashboardCertsMock) CountByStatus(context.Context, models.CertificateStatus) (int, error) {
	return m.pending, nil
}

func (m *dashboardCertsMock) UpdateReview(context.Context, *models.Certificate) error { return nil }

func newDashboardHandlerFixture() *DashboardHandler {
	students := &dashboardStudentsMock{
		student: &models.Student{ID: "s1", StudentID: "CS101", Name: "Asha Verma", Course: "B.Tech CSE", Status: models.StudentStatusActive},
		total:   12,
	}
	slots := &dashboardSlotsMock{slots: []models.ScheduleSlot{{Day: "Mon", TimeSlot: "9-10 AM", Subject: "Maths"}}}
	attendance := &dashboardAttendanceMock{snapshot: &models.AttendanceSnapshot{StudentID: "s1", SemesterAttendance: 82}}

	studentSvc := service.NewStudentService(students, nil, nil, nil)
	scheduleSvc := service.NewScheduleService(slots, students, nil, nil, nil, nil)
	attendanceSvc := service.NewAttendanceService(attendance, students, nil, nil, nil, 75)
	eventSvc := service.NewEventService(&dashboardEventsMock{upcoming: 2}, nil, nil)
	certSvc := service.NewCertificateService(&dashboardCertsMock{pending: 5}, students, nil, nil, nil)
	dashboardSvc := service.NewDashboardService(studentSvc, scheduleSvc, attendanceSvc, eventSvc, certSvc, nil, time.Minute, nil)

	return NewDashboardHandler(dashboardSvc)
}

func TestDashboardHandlerMyDashboardRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/me/dashboard", nil)
	c.Request = req

	handler.MyDashboard(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardHandlerMyDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/me/dashboard", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.MyDashboard(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Profile struct {
				StudentID string          `json:"studentId"`
				Name      string          `json:"name"`
				CGPA      json.RawMessage `json:"cgpa"`
			} `json:"studentProfile"`
			Schedule map[string]map[string]string `json:"schedule"`
			Alerts   struct {
				Alert bool `json:"alert"`
			} `json:"alerts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CS101", envelope.Data.Profile.StudentID)
	assert.JSONEq(t, `"--"`, string(envelope.Data.Profile.CGPA), "unknown CGPA renders as the sentinel")
	assert.Equal(t, "Maths", envelope.Data.Schedule["Mon"]["9-10 AM"])
	assert.Equal(t, "-", envelope.Data.Schedule["Fri"]["2-4 PM"])
	assert.False(t, envelope.Data.Alerts.Alert)
}

func TestDashboardHandlerAdminOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/dashboard/admin", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.AdminOverview(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			TotalStudents       int `json:"totalStudents"`
			PendingCertificates int `json:"pendingCertificates"`
			UpcomingEvents      int `json:"upcomingEvents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 12, envelope.Data.TotalStudents)
	assert.Equal(t, 5, envelope.Data.PendingCertificates)
	assert.Equal(t, 2, envelope.Data.UpcomingEvents)
}
