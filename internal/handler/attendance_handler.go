package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type attendanceResponse struct {
	Attendance dto.AttendanceView       `json:"attendance"`
	Alerts     dto.AttendanceEvaluation `json:"alerts"`
}

// MyAttendance returns the caller's snapshot with derived alerts.
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, alerts, err := h.attendance.SnapshotForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendanceResponse{Attendance: view, Alerts: alerts}, nil)
}

// StudentAttendance returns any student's snapshot with derived alerts.
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	view, alerts, err := h.attendance.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendanceResponse{Attendance: view, Alerts: alerts}, nil)
}

// UpdateSnapshot overwrites a student's snapshot.
func (h *AttendanceHandler) UpdateSnapshot(c *gin.Context) {
	var req service.UpdateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.StudentID = c.Param("id")

	snapshot, err := h.attendance.UpdateSnapshot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// RecordEvent appends one dated present/absent mark and returns the
// recomputed percentage.
func (h *AttendanceHandler) RecordEvent(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.StudentID = c.Param("id")

	result, err := h.attendance.RecordEvent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Events lists a student's attendance history, optionally bounded by
// from/to query dates (YYYY-MM-DD).
func (h *AttendanceHandler) Events(c *gin.Context) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}

	events, err := h.attendance.Events(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}
