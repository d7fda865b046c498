package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// ScheduleHandler exposes weekly schedule endpoints.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// MySchedule returns the caller's dense weekly grid.
func (h *ScheduleHandler) MySchedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	grid, err := h.schedule.WeeklyGridForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// StudentSchedule returns the dense weekly grid for any student.
func (h *ScheduleHandler) StudentSchedule(c *gin.Context) {
	grid, err := h.schedule.WeeklyGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// StudentSlots returns the sparse stored form for a student.
func (h *ScheduleHandler) StudentSlots(c *gin.Context) {
	slots, err := h.schedule.ListSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// UpsertDay replaces one day's slot assignments for a student.
func (h *ScheduleHandler) UpsertDay(c *gin.Context) {
	var req service.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.StudentID = c.Param("id")

	slots, err := h.schedule.UpsertDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// DeleteDay clears one day's slots for a student.
func (h *ScheduleHandler) DeleteDay(c *gin.Context) {
	if err := h.schedule.DeleteDay(c.Request.Context(), c.Param("id"), c.Param("day")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV streams the weekly grid as a CSV download.
func (h *ScheduleHandler) ExportCSV(c *gin.Context) {
	payload, err := h.schedule.ExportCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("schedule-%s.csv", c.Param("id"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
