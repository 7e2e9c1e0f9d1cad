package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-fees-api/internal/models"
)

const feeColumns = `id, student_id, academic_year, fee_type, amount, due_date, status, payment_date, payment_method,
        transaction_id, remarks, created_at, updated_at`

// FeeRepository manages persistence for fee records.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

type feeStudentRow struct {
	models.Fee
	RefID              sql.NullString `db:"ref_id"`
	RefAdmissionNumber sql.NullString `db:"ref_admission_number"`
	RefFirstName       sql.NullString `db:"ref_first_name"`
	RefLastName        sql.NullString `db:"ref_last_name"`
	RefClass           sql.NullString `db:"ref_class"`
}

// ListAll returns every fee ordered by due date, each with its student
// expanded to a partial projection. The projection is nil when the referenced
// student no longer exists.
func (r *FeeRepository) ListAll(ctx context.Context) ([]models.FeeWithStudent, error) {
	const query = `SELECT f.id, f.student_id, f.academic_year, f.fee_type, f.amount, f.due_date, f.status, f.payment_date,
        f.payment_method, f.transaction_id, f.remarks, f.created_at, f.updated_at,
        s.id AS ref_id, s.admission_number AS ref_admission_number, s.first_name AS ref_first_name,
        s.last_name AS ref_last_name, s.class AS ref_class
        FROM fees f LEFT JOIN students s ON s.id = f.student_id ORDER BY f.due_date ASC`
	rows := []feeStudentRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	fees := make([]models.FeeWithStudent, 0, len(rows))
	for _, row := range rows {
		fee := models.FeeWithStudent{Fee: row.Fee}
		if row.RefID.Valid {
			fee.Student = &models.StudentRef{
				ID:              row.RefID.String,
				AdmissionNumber: row.RefAdmissionNumber.String,
				FirstName:       row.RefFirstName.String,
				LastName:        row.RefLastName.String,
				Class:           row.RefClass.String,
			}
		}
		fees = append(fees, fee)
	}
	return fees, nil
}

// ListByStudent returns fees for one student ordered by due date.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	query := fmt.Sprintf("SELECT %s FROM fees WHERE student_id = $1 ORDER BY due_date ASC", feeColumns)
	fees := []models.Fee{}
	if err := r.db.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("list fees by student: %w", err)
	}
	return fees, nil
}

// FindByID fetches a fee by ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	query := fmt.Sprintf("SELECT %s FROM fees WHERE id = $1", feeColumns)
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a new fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now
	const query = `INSERT INTO fees (id, student_id, academic_year, fee_type, amount, due_date, status, payment_date,
        payment_method, transaction_id, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :academic_year, :fee_type, :amount, :due_date, :status, :payment_date,
        :payment_method, :transaction_id, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// Update rewrites an existing fee row.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fees SET student_id = :student_id, academic_year = :academic_year, fee_type = :fee_type,
        amount = :amount, due_date = :due_date, status = :status, payment_date = :payment_date,
        payment_method = :payment_method, transaction_id = :transaction_id, remarks = :remarks,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	return nil
}

// Delete removes a fee row.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM fees WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	return nil
}
