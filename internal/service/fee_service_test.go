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

type mockFeeRepo struct {
	fees    map[string]models.Fee
	deleted []string
}

func newMockFeeRepo() *mockFeeRepo {
	return &mockFeeRepo{fees: make(map[string]models.Fee)}
}

func (m *mockFeeRepo) sorted() []models.Fee {
	out := make([]models.Fee, 0, len(m.fees))
	for _, f := range m.fees {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

func (m *mockFeeRepo) ListAll(ctx context.Context) ([]models.FeeWithStudent, error) {
	out := make([]models.FeeWithStudent, 0, len(m.fees))
	for _, f := range m.sorted() {
		out = append(out, models.FeeWithStudent{Fee: f})
	}
	return out, nil
}

func (m *mockFeeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	out := []models.Fee{}
	for _, f := range m.sorted() {
		if f.StudentID == studentID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFeeRepo) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if f, ok := m.fees[id]; ok {
		return &f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = fmt.Sprintf("fee-%d", len(m.fees)+1)
	}
	fee.CreatedAt = time.Now()
	fee.UpdatedAt = time.Now()
	m.fees[fee.ID] = *fee
	return nil
}

func (m *mockFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	fee.UpdatedAt = time.Now()
	m.fees[fee.ID] = *fee
	return nil
}

func (m *mockFeeRepo) Delete(ctx context.Context, id string) error {
	delete(m.fees, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func feeAmount(v float64) *float64 { return &v }

func validFeeRequest(studentID string) CreateFeeRequest {
	return CreateFeeRequest{
		Student:      studentID,
		AcademicYear: "2024-25",
		FeeType:      models.FeeTypeTuition,
		Amount:       feeAmount(1000),
		DueDate:      time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newFeeFixture(t *testing.T) (*FeeService, *mockFeeRepo, *models.Student) {
	t.Helper()
	studentRepo := newMockStudentRepo()
	studentSvc := NewStudentService(studentRepo, NewValidator(), zap.NewNop())
	student, err := studentSvc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	feeRepo := newMockFeeRepo()
	feeSvc := NewFeeService(feeRepo, studentRepo, NewValidator(), zap.NewNop())
	return feeSvc, feeRepo, student
}

func TestFeeServiceCreateDefaultsToPending(t *testing.T) {
	svc, repo, student := newFeeFixture(t)

	fee, err := svc.Create(context.Background(), validFeeRequest(student.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, fee.ID)
	assert.Equal(t, models.FeeStatusPending, fee.Status)
	assert.Equal(t, student.ID, fee.StudentID)
	assert.Len(t, repo.fees, 1)
}

func TestFeeServiceCreateUnknownStudent(t *testing.T) {
	svc, repo, _ := newFeeFixture(t)

	_, err := svc.Create(context.Background(), validFeeRequest("missing"))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, repo.fees)
}

func TestFeeServiceCreateValidation(t *testing.T) {
	svc, repo, student := newFeeFixture(t)

	req := validFeeRequest(student.ID)
	req.Amount = nil
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "amount", appErr.Details[0].Field)
	assert.Empty(t, repo.fees)
}

func TestFeeServiceCreateZeroAmountAllowed(t *testing.T) {
	svc, _, student := newFeeFixture(t)

	req := validFeeRequest(student.ID)
	req.Amount = feeAmount(0)
	fee, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, float64(0), fee.Amount)
}

func TestFeeServiceListOrderedByDueDate(t *testing.T) {
	svc, _, student := newFeeFixture(t)

	late := validFeeRequest(student.ID)
	late.DueDate = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	late.Amount = feeAmount(500)
	lateFee, err := svc.Create(context.Background(), late)
	require.NoError(t, err)

	early := validFeeRequest(student.ID)
	earlyFee, err := svc.Create(context.Background(), early)
	require.NoError(t, err)
	// Distinct ids from the map-backed mock.
	require.NotEqual(t, lateFee.ID, earlyFee.ID)

	fees, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, earlyFee.ID, fees[0].ID)
	assert.Equal(t, lateFee.ID, fees[1].ID)
}

func TestFeeServiceUpdatePartialMerge(t *testing.T) {
	svc, _, student := newFeeFixture(t)

	created, err := svc.Create(context.Background(), validFeeRequest(student.ID))
	require.NoError(t, err)

	status := models.FeeStatusPaid
	paid := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), created.ID, UpdateFeeRequest{
		Status:      &status,
		PaymentDate: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
	assert.True(t, paid.Equal(*updated.PaymentDate))

	// Unsupplied fields are untouched.
	assert.Equal(t, created.Amount, updated.Amount)
	assert.Equal(t, created.FeeType, updated.FeeType)
	assert.Equal(t, created.AcademicYear, updated.AcademicYear)
	assert.True(t, created.DueDate.Equal(updated.DueDate))
}

func TestFeeServiceUpdateNotFound(t *testing.T) {
	svc, _, _ := newFeeFixture(t)

	status := models.FeeStatusPaid
	_, err := svc.Update(context.Background(), "missing", UpdateFeeRequest{Status: &status})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestFeeServiceDelete(t *testing.T) {
	svc, repo, student := newFeeFixture(t)

	created, err := svc.Create(context.Background(), validFeeRequest(student.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Contains(t, repo.deleted, created.ID)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
}

func TestStudentDeleteLeavesFees(t *testing.T) {
	studentRepo := newMockStudentRepo()
	studentSvc := NewStudentService(studentRepo, NewValidator(), zap.NewNop())
	student, err := studentSvc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	feeRepo := newMockFeeRepo()
	feeSvc := NewFeeService(feeRepo, studentRepo, NewValidator(), zap.NewNop())
	fee, err := feeSvc.Create(context.Background(), validFeeRequest(student.ID))
	require.NoError(t, err)

	require.NoError(t, studentSvc.Delete(context.Background(), student.ID))

	// The fee survives with its original student reference.
	kept, err := feeRepo.FindByID(context.Background(), fee.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, kept.StudentID)

	fees, err := feeSvc.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}
