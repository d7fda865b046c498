package dto

import (
	"bytes"
	"encoding/json"

	"github.com/noah-isme/student-records-api/internal/models"
)

// Sentinel is rendered where a derived value is unknown, so consumers can
// tell "unknown" from a genuine zero.
const Sentinel = "--"

// GPA wraps an optional grade-point average. Absent values marshal as the
// sentinel string so consumers can tell "unknown" from a genuine 0.0.
type GPA struct {
	Value float64
	Valid bool
}

// GPAOf lifts an optional float into a GPA.
func GPAOf(v *float64) GPA {
	if v == nil {
		return GPA{}
	}
	return GPA{Value: *v, Valid: true}
}

// KnownGPA builds a present GPA value.
func KnownGPA(v float64) GPA {
	return GPA{Value: v, Valid: true}
}

// MarshalJSON renders the value or the sentinel.
func (g GPA) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return json.Marshal(Sentinel)
	}
	return json.Marshal(g.Value)
}

// UnmarshalJSON accepts either the sentinel or a number; needed so cached
// payloads round-trip through Redis.
func (g *GPA) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		*g = GPA{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = GPA{Value: v, Valid: true}
	return nil
}

// StudentIdentity prefixes admin-audience report payloads.
type StudentIdentity struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	CGPA      GPA    `json:"cgpa"`
	Backlogs  int    `json:"backlogs"`
	Status    string `json:"status"`
}

// SkillView projects a skill for report and dashboard payloads.
type SkillView struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// FeedbackView renders the advisory note with a display-ready date.
type FeedbackView struct {
	Text        string `json:"text"`
	LastUpdated string `json:"lastUpdated"`
}

// CertificateView is the minimal projection reports expose; verification
// state is passed through, never reinterpreted.
type CertificateView struct {
	Title         string `json:"title"`
	Status        string `json:"status"`
	AdminComments string `json:"adminComments"`
}

// SemesterView lists a semester for the report's semester picker.
type SemesterView struct {
	Name     string  `json:"name"`
	SGPA     float64 `json:"sgpa"`
	Subjects string  `json:"subjects"`
}

// ReportPayload is the composed academic report. Student is only set for
// the admin audience.
type ReportPayload struct {
	Student      *StudentIdentity           `json:"student,omitempty"`
	Academic     []models.SubjectGradeEntry `json:"academic"`
	SGPA         GPA                        `json:"sgpa"`
	CGPA         GPA                        `json:"cgpa"`
	Skills       []SkillView                `json:"skills"`
	Feedback     FeedbackView               `json:"feedback"`
	Certificates []CertificateView          `json:"certificates"`
	Semesters    []SemesterView             `json:"semesters"`
}
