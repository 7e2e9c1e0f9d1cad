package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	deleted  []string
	err      error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]models.Student)}
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdmissionNumber < out[j].AdmissionNumber })
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByAdmissionNumber(ctx context.Context, admissionNumber string) (bool, error) {
	for _, s := range m.students {
		if s.AdmissionNumber == admissionNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = fmt.Sprintf("student-%d", len(m.students)+1)
	}
	student.CreatedAt = time.Now()
	student.UpdatedAt = time.Now()
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now()
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func validCreateRequest() CreateStudentRequest {
	return CreateStudentRequest{
		AdmissionNumber: "A100",
		FirstName:       "Asha",
		LastName:        "Rao",
		DateOfBirth:     time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		Gender:          models.GenderFemale,
		Class:           "5",
		Section:         "A",
		RollNumber:      "12",
		ParentName:      "Ravi Rao",
		ParentPhone:     "9999999999",
		ParentEmail:     "ravi@example.com",
	}
}

func TestStudentServiceCreateDefaults(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	student, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.False(t, student.AdmissionDate.IsZero())

	fetched, err := svc.Get(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, "A100", fetched.AdmissionNumber)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestStudentServiceCreateDuplicateAdmissionNumber(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	first, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.FirstName = "Other"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	// The existing record is untouched.
	kept, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", kept.FirstName)
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	req := validCreateRequest()
	req.FirstName = ""
	req.ParentEmail = "not-an-email"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Details, 2)
	assert.Equal(t, "firstName", appErr.Details[0].Field)
	assert.Equal(t, "First name is required", appErr.Details[0].Message)
	assert.Equal(t, "parentEmail", appErr.Details[1].Field)
	assert.Equal(t, "Please include a valid email", appErr.Details[1].Message)
	assert.Empty(t, repo.students)
}

func TestStudentServiceUpdatePartialMerge(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	section := "B"
	status := models.StudentStatusGraduated
	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{
		Section: &section,
		Status:  &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Section)
	assert.Equal(t, models.StudentStatusGraduated, updated.Status)

	// Everything not supplied keeps its prior value.
	assert.Equal(t, created.AdmissionNumber, updated.AdmissionNumber)
	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Equal(t, created.Class, updated.Class)
	assert.Equal(t, created.ParentEmail, updated.ParentEmail)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	name := "New"
	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{FirstName: &name})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, repo.students)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, NewValidator(), zap.NewNop())

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Contains(t, repo.deleted, created.ID)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
