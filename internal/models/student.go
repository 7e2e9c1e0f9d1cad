package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Gender enumerates recognised gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusGraduated StudentStatus = "Graduated"
)

// Address is the optional structured home address of a student. It is stored
// as a single JSONB column.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (a *Address) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (a *Address) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported address type %T", src)
	}
	return json.Unmarshal(raw, a)
}

// Student represents an enrolled person.
type Student struct {
	ID              string        `db:"id" json:"id"`
	AdmissionNumber string        `db:"admission_number" json:"admissionNumber"`
	FirstName       string        `db:"first_name" json:"firstName"`
	LastName        string        `db:"last_name" json:"lastName"`
	DateOfBirth     time.Time     `db:"date_of_birth" json:"dateOfBirth"`
	Gender          Gender        `db:"gender" json:"gender"`
	Class           string        `db:"class" json:"class"`
	Section         string        `db:"section" json:"section"`
	RollNumber      string        `db:"roll_number" json:"rollNumber"`
	ParentName      string        `db:"parent_name" json:"parentName"`
	ParentPhone     string        `db:"parent_phone" json:"parentPhone"`
	ParentEmail     string        `db:"parent_email" json:"parentEmail"`
	Address         *Address      `db:"address" json:"address,omitempty"`
	AdmissionDate   time.Time     `db:"admission_date" json:"admissionDate"`
	Status          StudentStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}
