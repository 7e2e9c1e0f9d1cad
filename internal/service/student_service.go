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

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByAdmissionNumber(ctx context.Context, admissionNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds the payload for registering a student. Enum
// fields are accepted as free strings at this boundary; membership is
// enforced by the persistence schema.
type CreateStudentRequest struct {
	AdmissionNumber string               `json:"admissionNumber" validate:"required"`
	FirstName       string               `json:"firstName" validate:"required"`
	LastName        string               `json:"lastName" validate:"required"`
	DateOfBirth     time.Time            `json:"dateOfBirth" validate:"required"`
	Gender          models.Gender        `json:"gender" validate:"required"`
	Class           string               `json:"class" validate:"required"`
	Section         string               `json:"section" validate:"required"`
	RollNumber      string               `json:"rollNumber" validate:"required"`
	ParentName      string               `json:"parentName" validate:"required"`
	ParentPhone     string               `json:"parentPhone" validate:"required"`
	ParentEmail     string               `json:"parentEmail" validate:"required,email"`
	Address         *models.Address      `json:"address"`
	AdmissionDate   *time.Time           `json:"admissionDate"`
	Status          models.StudentStatus `json:"status"`
}

// UpdateStudentRequest holds a partial update. Only non-nil fields overwrite
// the stored record.
type UpdateStudentRequest struct {
	AdmissionNumber *string               `json:"admissionNumber"`
	FirstName       *string               `json:"firstName"`
	LastName        *string               `json:"lastName"`
	DateOfBirth     *time.Time            `json:"dateOfBirth"`
	Gender          *models.Gender        `json:"gender"`
	Class           *string               `json:"class"`
	Section         *string               `json:"section"`
	RollNumber      *string               `json:"rollNumber"`
	ParentName      *string               `json:"parentName"`
	ParentPhone     *string               `json:"parentPhone"`
	ParentEmail     *string               `json:"parentEmail" validate:"omitempty,email"`
	Address         *models.Address       `json:"address"`
	AdmissionDate   *time.Time            `json:"admissionDate"`
	Status          *models.StudentStatus `json:"status"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns every student ordered by admission number.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student after validating the payload and enforcing
// admission-number uniqueness.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, violations(err)
	}
	exists, err := s.repo.ExistsByAdmissionNumber(ctx, req.AdmissionNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admission number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Student already exists")
	}

	student := &models.Student{
		AdmissionNumber: req.AdmissionNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Class:           req.Class,
		Section:         req.Section,
		RollNumber:      req.RollNumber,
		ParentName:      req.ParentName,
		ParentPhone:     req.ParentPhone,
		ParentEmail:     req.ParentEmail,
		Address:         req.Address,
		Status:          req.Status,
	}
	if req.AdmissionDate != nil {
		student.AdmissionDate = *req.AdmissionDate
	} else {
		student.AdmissionDate = time.Now().UTC()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("id", student.ID), zap.String("admission_number", student.AdmissionNumber))
	return student, nil
}

// Update merges the supplied fields into the stored record. Fields absent
// from the payload keep their prior value.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, violations(err)
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.AdmissionNumber != nil {
		student.AdmissionNumber = *req.AdmissionNumber
	}
	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.Class != nil {
		student.Class = *req.Class
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.RollNumber != nil {
		student.RollNumber = *req.RollNumber
	}
	if req.ParentName != nil {
		student.ParentName = *req.ParentName
	}
	if req.ParentPhone != nil {
		student.ParentPhone = *req.ParentPhone
	}
	if req.ParentEmail != nil {
		student.ParentEmail = *req.ParentEmail
	}
	if req.Address != nil {
		student.Address = req.Address
	}
	if req.AdmissionDate != nil {
		student.AdmissionDate = *req.AdmissionDate
	}
	if req.Status != nil {
		student.Status = *req.Status
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student. Fee records referencing the student are not
// cascaded or blocked.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student removed", zap.String("id", id))
	return nil
}
