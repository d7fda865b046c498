package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// ReportHandler exposes academic report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// MyReport returns the caller's own report, without the identity block.
func (h *ReportHandler) MyReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	semester := c.DefaultQuery("semester", service.SemesterAll)
	report, err := h.reports.StudentReport(c.Request.Context(), claims.UserID, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// StudentReport returns the report for any student. Admins receive the full
// view with the identity block; a student reading their own record receives
// the same self-scoped payload as /me/report.
func (h *ReportHandler) StudentReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	semester := c.DefaultQuery("semester", service.SemesterAll)
	var (
		report any
		err    error
	)
	if claims.Role == models.RoleStudent {
		report, err = h.reports.SelfReport(c.Request.Context(), c.Param("id"), semester)
	} else {
		report, err = h.reports.AdminReport(c.Request.Context(), c.Param("id"), semester)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// StudentReportPDF streams the admin report as a PDF download.
func (h *ReportHandler) StudentReportPDF(c *gin.Context) {
	semester := c.DefaultQuery("semester", service.SemesterAll)
	payload, err := h.reports.AdminReportPDF(c.Request.Context(), c.Param("id"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("report-%s.pdf", c.Param("id"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
