package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

// ReportAudience scopes report composition.
type ReportAudience string

const (
	// AudienceSelf omits the identity block; the caller already knows who
	// they are.
	AudienceSelf ReportAudience = "self"
	// AudienceAdmin prefixes the payload with the student identity block.
	AudienceAdmin ReportAudience = "admin"
)

// ComposeReport merges academic, skills, certificates, and feedback data
// into one role-scoped payload. It is a pure function of its inputs: the
// same inputs always produce the same payload.
func ComposeReport(audience ReportAudience, student *models.Student, semesters []models.SemesterRecord, skills []models.Skill, certificates []models.Certificate, feedback *models.Feedback, selected string) *dto.ReportPayload {
	view := BuildAcademicView(semesters, selected, student.CGPA)

	payload := &dto.ReportPayload{
		Academic:     view.Academic,
		SGPA:         view.SGPA,
		CGPA:         view.CGPA,
		Skills:       make([]dto.SkillView, 0, len(skills)),
		Feedback:     feedbackView(feedback),
		Certificates: make([]dto.CertificateView, 0, len(certificates)),
		Semesters:    make([]dto.SemesterView, 0, len(semesters)),
	}
	for _, skill := range skills {
		payload.Skills = append(payload.Skills, dto.SkillView{Name: skill.Name, Level: skill.Level})
	}
	for _, cert := range certificates {
		payload.Certificates = append(payload.Certificates, dto.CertificateView{
			Title:         cert.Title,
			Status:        string(cert.Status),
			AdminComments: cert.AdminComments,
		})
	}
	for _, sem := range semesters {
		payload.Semesters = append(payload.Semesters, dto.SemesterView{Name: sem.Name, SGPA: sem.SGPA, Subjects: sem.Subjects})
	}

	if audience == AudienceAdmin {
		payload.Student = &dto.StudentIdentity{
			ID:        student.ID,
			StudentID: student.StudentID,
			Name:      student.Name,
			Course:    student.Course,
			CGPA:      recordCGPA(student.CGPA),
			Backlogs:  student.Backlogs,
			Status:    string(student.Status),
		}
	}
	return payload
}

// feedbackView defaults missing feedback to a fixed message and the
// sentinel date instead of omitting the block.
func feedbackView(feedback *models.Feedback) dto.FeedbackView {
	view := dto.FeedbackView{Text: "No feedback yet.", LastUpdated: dto.Sentinel}
	if feedback == nil {
		return view
	}
	if strings.TrimSpace(feedback.Text) != "" {
		view.Text = feedback.Text
	}
	if feedback.UpdatedAt != nil {
		view.LastUpdated = feedback.UpdatedAt.Format("1/2/2006")
	}
	return view
}

type reportStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindByIDOrStudentID(ctx context.Context, id string) (*models.Student, error)
	ListSemesters(ctx context.Context, studentID string) ([]models.SemesterRecord, error)
	ListSkills(ctx context.Context, studentID string) ([]models.Skill, error)
	GetFeedback(ctx context.Context, studentID string) (*models.Feedback, error)
}

type certificateLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService assembles student and admin report payloads.
type ReportService struct {
	students     reportStudentRepository
	certificates certificateLister
	cache        *CacheService
	pdf          pdfRenderer
	logger       *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(students reportStudentRepository, certificates certificateLister, cache *CacheService, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{students: students, certificates: certificates, cache: cache, pdf: pdf, logger: logger}
}

// StudentReport composes the self-view for the authenticated student.
func (s *ReportService) StudentReport(ctx context.Context, userID, semester string) (*dto.ReportPayload, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return s.compose(ctx, AudienceSelf, student, semester)
}

// SelfReport composes the self-view for a student addressed by record or
// roll-number ID, for students reading their own record on admin routes.
func (s *ReportService) SelfReport(ctx context.Context, studentID, semester string) (*dto.ReportPayload, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.compose(ctx, AudienceSelf, student, semester)
}

// AdminReport composes the admin view of an arbitrary student.
func (s *ReportService) AdminReport(ctx context.Context, studentID, semester string) (*dto.ReportPayload, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.compose(ctx, AudienceAdmin, student, semester)
}

// AdminReportPDF renders the admin grade table as a PDF document.
func (s *ReportService) AdminReportPDF(ctx context.Context, studentID, semester string) ([]byte, error) {
	student, err := s.students.FindByIDOrStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	payload, err := s.compose(ctx, AudienceAdmin, student, semester)
	if err != nil {
		return nil, err
	}

	headers := []string{"Subject", "Grade", "Points"}
	rows := make([]map[string]string, 0, len(payload.Academic))
	for _, entry := range payload.Academic {
		rows = append(rows, map[string]string{
			"Subject": entry.Subject,
			"Grade":   entry.Grade,
			"Points":  strconv.Itoa(entry.GradeValue),
		})
	}
	document, err := s.pdf.Render(export.Dataset{Headers: headers, Rows: rows}, fmt.Sprintf("Academic Report - %s", student.Name))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report pdf")
	}
	return document, nil
}

func (s *ReportService) compose(ctx context.Context, audience ReportAudience, student *models.Student, semester string) (*dto.ReportPayload, error) {
	if semester == "" {
		semester = SemesterAll
	}
	cacheKey := fmt.Sprintf("report:%s:%s:%s", audience, student.ID, semester)
	if s.cache != nil {
		var cached dto.ReportPayload
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	semesters, err := s.students.ListSemesters(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	skills, err := s.students.ListSkills(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list skills")
	}
	feedback, err := s.students.GetFeedback(ctx, student.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
	}
	certificates, err := s.certificates.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}

	payload := ComposeReport(audience, student, semesters, skills, certificates, feedback, semester)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, payload, 0); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return payload, nil
}
