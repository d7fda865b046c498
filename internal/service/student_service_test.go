package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

type trackingStudentRepo struct {
	fakeStudentRepo
	semesters  []models.SemesterRecord
	created    *models.Student
	updated    *models.Student
	addedSem   *models.SemesterRecord
	addedSkill *models.Skill
	feedback   string
	deletedID  string
}

func (f *trackingStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.created = student
	return nil
}

func (f *trackingStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.updated = student
	return nil
}

func (f *trackingStudentRepo) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return nil
}

func (f *trackingStudentRepo) ListSemesters(context.Context, string) ([]models.SemesterRecord, error) {
	return f.semesters, nil
}

func (f *trackingStudentRepo) AddSemester(_ context.Context, record *models.SemesterRecord) error {
	f.addedSem = record
	return nil
}

func (f *trackingStudentRepo) AddSkill(_ context.Context, _ string, skill models.Skill) error {
	f.addedSkill = &skill
	return nil
}

func (f *trackingStudentRepo) UpsertFeedback(_ context.Context, _ string, text string, _ time.Time) error {
	f.feedback = text
	return nil
}

func newStudentFixture() (*StudentService, *trackingStudentRepo, *fakeCacheRepo) {
	repo := &trackingStudentRepo{}
	repo.student = &models.Student{ID: "s1", StudentID: "CS101", Name: "Asha Verma", Course: "B.Tech CSE", Status: models.StudentStatusActive}
	cacheRepo := &fakeCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	return NewStudentService(repo, cache, nil, nil), repo, cacheRepo
}

func TestCreateStudentDefaultsToActive(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		StudentID: "CS102",
		Name:      "Ravi Kumar",
		Course:    "B.Tech ECE",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NotEmpty(t, student.ID)
	assert.Same(t, student, repo.created)
}

func TestCreateStudentValidation(t *testing.T) {
	svc, _, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "No Roll Number"})
	require.Error(t, err)

	bad := 11.0
	_, err = svc.Create(context.Background(), CreateStudentRequest{StudentID: "CS103", Name: "X", Course: "Y", CGPA: &bad})
	require.Error(t, err, "CGPA above 10 is rejected")
}

func TestUpdateStudentAppliesPartialFields(t *testing.T) {
	svc, repo, cacheRepo := newStudentFixture()

	course := "M.Tech CSE"
	backlogs := 2
	student, err := svc.Update(context.Background(), "CS101", UpdateStudentRequest{Course: &course, Backlogs: &backlogs})
	require.NoError(t, err)
	assert.Equal(t, "M.Tech CSE", student.Course)
	assert.Equal(t, 2, student.Backlogs)
	assert.Equal(t, "Asha Verma", student.Name, "untouched fields survive")
	require.NotNil(t, repo.updated)
	assert.Contains(t, cacheRepo.patterns, "report:*:s1:*")
	assert.Contains(t, cacheRepo.patterns, "dash:s1")
}

func TestAddSemesterAppendsInOrder(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	repo.semesters = []models.SemesterRecord{{Name: "Semester 1"}, {Name: "Semester 2"}}

	record, err := svc.AddSemester(context.Background(), "CS101", AddSemesterRequest{
		Name:     "Semester 3",
		SGPA:     8.2,
		Subjects: "Maths:A, DBMS:B+",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, record.Position, "the new semester lands after the existing ones")
	assert.Equal(t, "Maths:A, DBMS:B+", record.Subjects, "the compact form is stored verbatim")
	assert.Same(t, record, repo.addedSem)
}

func TestAddSkillAndFeedback(t *testing.T) {
	svc, repo, cacheRepo := newStudentFixture()

	require.NoError(t, svc.AddSkill(context.Background(), "CS101", AddSkillRequest{Name: "Go", Level: 70}))
	require.NotNil(t, repo.addedSkill)
	assert.Equal(t, "Go", repo.addedSkill.Name)

	require.NoError(t, svc.UpsertFeedback(context.Background(), "CS101", FeedbackRequest{Text: "Strong progress"}))
	assert.Equal(t, "Strong progress", repo.feedback)

	err := svc.AddSkill(context.Background(), "CS101", AddSkillRequest{Name: "Go", Level: 150})
	require.Error(t, err, "skill level is bounded")

	assert.Contains(t, cacheRepo.patterns, "dash:s1")
}

func TestDeleteStudentInvalidatesCaches(t *testing.T) {
	svc, repo, cacheRepo := newStudentFixture()

	require.NoError(t, svc.Delete(context.Background(), "CS101"))
	assert.Equal(t, "s1", repo.deletedID)
	assert.Contains(t, cacheRepo.patterns, "report:*:s1:*")
	assert.Contains(t, cacheRepo.patterns, "dash:s1")
}
