package models

import (
	"strings"
	"time"
)

// Loan application statuses. PENDING is the only non-terminal state.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// NormalizeStatus maps case-insensitive caller input to the canonical
// upper-case status value.
func NormalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsDecision reports whether a normalized status is a valid review decision.
// PENDING is not a decision: applications are created pending and never
// transition back.
func IsDecision(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// LoanApplication represents a loan application in the system.
// Only Status and UpdatedAt are mutable after creation.
type LoanApplication struct {
	ID string `json:"id" bson:"id"`

	// Applicant profile, immutable after intake.
	FirstName   string `json:"first_name" bson:"first_name"`
	LastName    string `json:"last_name" bson:"last_name"`
	DateOfBirth string `json:"date_of_birth" bson:"date_of_birth"`
	Gender      string `json:"gender" bson:"gender"`
	Email       string `json:"email" bson:"email"`
	Phone       string `json:"phone" bson:"phone"`
	Street      string `json:"street" bson:"street"`
	City        string `json:"city" bson:"city"`
	Region      string `json:"region" bson:"region"`
	PostalCode  string `json:"postal_code" bson:"postal_code"`

	// Employment details.
	EmploymentType string   `json:"employment_type" bson:"employment_type"`
	EmployerName   *string  `json:"employer_name,omitempty" bson:"employer_name,omitempty"`
	MonthlyIncome  *float64 `json:"monthly_income,omitempty" bson:"monthly_income,omitempty"`

	// Requested loan.
	LoanAmount float64 `json:"loan_amount" bson:"loan_amount"`
	LoanTenure int     `json:"loan_tenure" bson:"loan_tenure"`

	// Disclosures.
	ExistingLoans *string `json:"existing_loans,omitempty" bson:"existing_loans,omitempty"`
	TaxID         *string `json:"tax_id,omitempty" bson:"tax_id,omitempty"`
	NationalID    *string `json:"national_id,omitempty" bson:"national_id,omitempty"`

	// CertificatePath references the stored supporting document. Set once
	// at intake, never null afterwards.
	CertificatePath string `json:"certificate_path" bson:"certificate_path"`

	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"-"`
	UpdatedAt time.Time `json:"updated_at" bson:"-"`
}
