package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/filestore"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidStatus is returned for a decision outside {APPROVED, REJECTED}.
// It is raised before any store access.
var ErrInvalidStatus = errors.New("status must be APPROVED or REJECTED")

// ValidationError reports a required submission field that is missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Store is the persistence surface the service depends on.
type Store interface {
	InsertLoan(ctx context.Context, app *models.LoanApplication) error
	FindLoans(ctx context.Context, filter repository.LoanFilter) ([]models.LoanApplication, error)
	FindLoanByID(ctx context.Context, id string) (*models.LoanApplication, error)
	UpdateLoanStatus(ctx context.Context, id, status string, now time.Time) (*models.LoanApplication, error)
	InsertStatusCheck(ctx context.Context, check *models.StatusCheck) error
	ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error)
}

// Service handles business logic
type Service struct {
	store Store
	files *filestore.FileStore
	log   *logrus.Logger
}

// NewService initializes a new service
func NewService(store Store, files *filestore.FileStore, log *logrus.Logger) *Service {
	return &Service{store: store, files: files, log: log}
}

// SubmitLoanInput carries the applicant-supplied fields of a new application.
type SubmitLoanInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Gender      string
	Email       string
	Phone       string
	Street      string
	City        string
	Region      string
	PostalCode  string

	EmploymentType string
	EmployerName   *string
	MonthlyIncome  *float64

	LoanAmount float64
	LoanTenure int

	ExistingLoans *string
	TaxID         *string
	NationalID    *string
}

func (in *SubmitLoanInput) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"date_of_birth", in.DateOfBirth},
		{"gender", in.Gender},
		{"email", in.Email},
		{"phone", in.Phone},
		{"street", in.Street},
		{"city", in.City},
		{"region", in.Region},
		{"postal_code", in.PostalCode},
		{"employment_type", in.EmploymentType},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field}
		}
	}
	if in.LoanAmount <= 0 {
		return &ValidationError{Field: "loan_amount"}
	}
	if in.LoanTenure <= 0 {
		return &ValidationError{Field: "loan_tenure"}
	}
	return nil
}

// SubmitLoan stores the uploaded certificate, then persists a new PENDING
// application referencing it. The id, certificate path and timestamps are
// server-assigned. If the insert fails the stored file is deleted, so a
// record never points at a file that was not durably written first.
func (s *Service) SubmitLoan(ctx context.Context, input SubmitLoanInput, certificate io.Reader, filename string) (*models.LoanApplication, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	path, err := s.files.Save(certificate, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}

	now := time.Now().UTC()
	app := &models.LoanApplication{
		ID:              uuid.New().String(),
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		DateOfBirth:     input.DateOfBirth,
		Gender:          input.Gender,
		Email:           input.Email,
		Phone:           input.Phone,
		Street:          input.Street,
		City:            input.City,
		Region:          input.Region,
		PostalCode:      input.PostalCode,
		EmploymentType:  input.EmploymentType,
		EmployerName:    input.EmployerName,
		MonthlyIncome:   input.MonthlyIncome,
		LoanAmount:      input.LoanAmount,
		LoanTenure:      input.LoanTenure,
		ExistingLoans:   input.ExistingLoans,
		TaxID:           input.TaxID,
		NationalID:      input.NationalID,
		CertificatePath: path,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.InsertLoan(ctx, app); err != nil {
		if delErr := s.files.Delete(path); delErr != nil {
			s.log.Warnf("Orphaned certificate %s left after failed insert: %v", path, delErr)
		}
		return nil, err
	}

	s.log.Infof("Loan application submitted: %s", app.ID)
	return app, nil
}

// ListLoans returns applications matching the optional filters, most recent
// first. The status filter is case-insensitive; email is exact-match.
func (s *Service) ListLoans(ctx context.Context, status, email string) ([]models.LoanApplication, error) {
	filter := repository.LoanFilter{Email: email}
	if status != "" {
		filter.Status = models.NormalizeStatus(status)
	}
	return s.store.FindLoans(ctx, filter)
}

// GetLoan retrieves a single application by id
func (s *Service) GetLoan(ctx context.Context, id string) (*models.LoanApplication, error) {
	return s.store.FindLoanByID(ctx, id)
}

// DecideLoan transitions a PENDING application to APPROVED or REJECTED.
// Input is case-insensitive; anything else fails before the store is touched.
func (s *Service) DecideLoan(ctx context.Context, id, status string) (*models.LoanApplication, error) {
	status = models.NormalizeStatus(status)
	if !models.IsDecision(status) {
		return nil, ErrInvalidStatus
	}

	app, err := s.store.UpdateLoanStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Infof("Loan application %s decided: %s", id, status)
	return app, nil
}

// GetCertificate returns the stored supporting document of an application
// together with its original filename. A missing record, a record without a
// certificate path and a missing file all collapse to ErrNotFound.
func (s *Service) GetCertificate(ctx context.Context, id string) (io.ReadCloser, string, error) {
	app, err := s.store.FindLoanByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if app.CertificatePath == "" {
		return nil, "", repository.ErrNotFound
	}

	f, err := s.files.Open(app.CertificatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", err
	}
	return f, filestore.OriginalName(app.CertificatePath), nil
}

// CreateStatusCheck persists a health-ping record for the given client
func (s *Service) CreateStatusCheck(ctx context.Context, clientName string) (*models.StatusCheck, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, &ValidationError{Field: "client_name"}
	}
	check := &models.StatusCheck{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.store.InsertStatusCheck(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

// ListStatusChecks returns stored health-ping records
func (s *Service) ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error) {
	return s.store.ListStatusChecks(ctx)
}
