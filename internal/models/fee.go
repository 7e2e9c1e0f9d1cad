package models

import "time"

// FeeType enumerates billing categories.
type FeeType string

const (
	FeeTypeTuition   FeeType = "Tuition"
	FeeTypeTransport FeeType = "Transport"
	FeeTypeLibrary   FeeType = "Library"
	FeeTypeComputer  FeeType = "Computer"
	FeeTypeSports    FeeType = "Sports"
	FeeTypeOther     FeeType = "Other"
)

// FeeStatus enumerates the fee lifecycle. There is no automatic transition:
// moving from Pending to Paid or Overdue is always caller-driven.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "Pending"
	FeeStatusPaid    FeeStatus = "Paid"
	FeeStatusOverdue FeeStatus = "Overdue"
)

// PaymentMethod enumerates settlement channels.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOnline PaymentMethod = "Online"
	PaymentMethodCheque PaymentMethod = "Cheque"
	PaymentMethodOther  PaymentMethod = "Other"
)

// Fee is a single billing obligation for one student in one academic year.
// The student reference is weak: the fee depends on the student's existence
// at creation time only, and deleting the student leaves the fee in place.
type Fee struct {
	ID            string         `db:"id" json:"id"`
	StudentID     string         `db:"student_id" json:"student"`
	AcademicYear  string         `db:"academic_year" json:"academicYear"`
	FeeType       FeeType        `db:"fee_type" json:"feeType"`
	Amount        float64        `db:"amount" json:"amount"`
	DueDate       time.Time      `db:"due_date" json:"dueDate"`
	Status        FeeStatus      `db:"status" json:"status"`
	PaymentDate   *time.Time     `db:"payment_date" json:"paymentDate,omitempty"`
	PaymentMethod *PaymentMethod `db:"payment_method" json:"paymentMethod,omitempty"`
	TransactionID *string        `db:"transaction_id" json:"transactionId,omitempty"`
	Remarks       *string        `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// StudentRef is the partial student projection embedded in fee listings.
type StudentRef struct {
	ID              string `json:"id"`
	AdmissionNumber string `json:"admissionNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Class           string `json:"class"`
}

// FeeWithStudent pairs a fee with its expanded student projection. Student is
// nil for orphaned fees whose student has since been deleted.
type FeeWithStudent struct {
	Fee
	Student *StudentRef `json:"student"`
}
