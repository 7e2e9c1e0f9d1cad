package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

type feeRepository interface {
	ListAll(ctx context.Context) ([]models.FeeWithStudent, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	Update(ctx context.Context, fee *models.Fee) error
	Delete(ctx context.Context, id string) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreateFeeRequest holds the payload for recording a fee obligation. Status
// is not accepted here; new fees always start Pending. Amount is a pointer so
// an explicit zero passes the required check (the model does not restrict
// sign or zero).
type CreateFeeRequest struct {
	Student       string                `json:"student" validate:"required"`
	AcademicYear  string                `json:"academicYear" validate:"required"`
	FeeType       models.FeeType        `json:"feeType" validate:"required"`
	Amount        *float64              `json:"amount" validate:"required"`
	DueDate       time.Time             `json:"dueDate" validate:"required"`
	PaymentDate   *time.Time            `json:"paymentDate"`
	PaymentMethod *models.PaymentMethod `json:"paymentMethod"`
	TransactionID *string               `json:"transactionId"`
	Remarks       *string               `json:"remarks"`
}

// UpdateFeeRequest holds a partial update. Any field, including status and
// payment details, may be set; the service imposes no cross-field rule such
// as requiring a payment date when marking a fee Paid.
type UpdateFeeRequest struct {
	Student       *string               `json:"student"`
	AcademicYear  *string               `json:"academicYear"`
	FeeType       *models.FeeType       `json:"feeType"`
	Amount        *float64              `json:"amount"`
	DueDate       *time.Time            `json:"dueDate"`
	Status        *models.FeeStatus     `json:"status"`
	PaymentDate   *time.Time            `json:"paymentDate"`
	PaymentMethod *models.PaymentMethod `json:"paymentMethod"`
	TransactionID *string               `json:"transactionId"`
	Remarks       *string               `json:"remarks"`
}

// FeeService handles fee use-cases.
type FeeService struct {
	repo      feeRepository
	students  studentFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs the fee service.
func NewFeeService(repo feeRepository, students studentFinder, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns every fee ordered by due date with the student projection expanded.
func (s *FeeService) List(ctx context.Context) ([]models.FeeWithStudent, error) {
	fees, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, nil
}

// ListByStudent returns fees for one student ordered by due date.
func (s *FeeService) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	fees, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees for student")
	}
	return fees, nil
}

// Create records a new fee after validating the payload and verifying that
// the referenced student exists. The existence check and the insert are not
// atomic as a pair; a concurrent student deletion in between leaves an
// orphaned fee, which is an accepted limitation.
func (s *FeeService) Create(ctx context.Context, req CreateFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, violations(err)
	}
	if _, err := s.students.FindByID(ctx, req.Student); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify student")
	}

	fee := &models.Fee{
		StudentID:     req.Student,
		AcademicYear:  req.AcademicYear,
		FeeType:       req.FeeType,
		Amount:        *req.Amount,
		DueDate:       req.DueDate,
		Status:        models.FeeStatusPending,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Remarks:       req.Remarks,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee")
	}
	s.logger.Info("fee created", zap.String("id", fee.ID), zap.String("student_id", fee.StudentID))
	return fee, nil
}

// Update merges the supplied fields into the stored fee record.
func (s *FeeService) Update(ctx context.Context, id string, req UpdateFeeRequest) (*models.Fee, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}

	if req.Student != nil {
		fee.StudentID = *req.Student
	}
	if req.AcademicYear != nil {
		fee.AcademicYear = *req.AcademicYear
	}
	if req.FeeType != nil {
		fee.FeeType = *req.FeeType
	}
	if req.Amount != nil {
		fee.Amount = *req.Amount
	}
	if req.DueDate != nil {
		fee.DueDate = *req.DueDate
	}
	if req.Status != nil {
		fee.Status = *req.Status
	}
	if req.PaymentDate != nil {
		fee.PaymentDate = req.PaymentDate
	}
	if req.PaymentMethod != nil {
		fee.PaymentMethod = req.PaymentMethod
	}
	if req.TransactionID != nil {
		fee.TransactionID = req.TransactionID
	}
	if req.Remarks != nil {
		fee.Remarks = req.Remarks
	}

	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee")
	}
	return fee, nil
}

// Delete removes a fee record.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "Fee record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee")
	}
	s.logger.Info("fee removed", zap.String("id", id))
	return nil
}
