package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/gorilla/mux"
)

// maxUploadSize bounds multipart submissions, certificate included.
const maxUploadSize = 32 << 20

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter builds the /api route table.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", h.Root).Methods("GET")
	api.HandleFunc("/status", h.CreateStatusCheck).Methods("POST")
	api.HandleFunc("/status", h.ListStatusChecks).Methods("GET")

	// Public intake endpoint
	api.HandleFunc("/loans", h.CreateLoan).Methods("POST")

	// Admin review endpoints
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/loans", h.ListLoans).Methods("GET")
	admin.HandleFunc("/loans/{id}", h.GetLoan).Methods("GET")
	admin.HandleFunc("/loans/{id}/status", h.UpdateLoanStatus).Methods("PATCH")
	admin.HandleFunc("/loans/{id}/certificate", h.GetCertificate).Methods("GET")

	return r
}

// Root handles the health greeting
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

// CreateLoan handles a public loan application submission
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := service.SubmitLoanInput{
		FirstName:      r.FormValue("first_name"),
		LastName:       r.FormValue("last_name"),
		DateOfBirth:    r.FormValue("date_of_birth"),
		Gender:         r.FormValue("gender"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		Street:         r.FormValue("street"),
		City:           r.FormValue("city"),
		Region:         r.FormValue("region"),
		PostalCode:     r.FormValue("postal_code"),
		EmploymentType: r.FormValue("employment_type"),
		EmployerName:   optionalField(r, "employer_name"),
		ExistingLoans:  optionalField(r, "existing_loans"),
		TaxID:          optionalField(r, "tax_id"),
		NationalID:     optionalField(r, "national_id"),
	}

	amount, err := strconv.ParseFloat(r.FormValue("loan_amount"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan_amount")
		return
	}
	input.LoanAmount = amount

	tenure, err := strconv.Atoi(r.FormValue("loan_tenure"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan_tenure")
		return
	}
	input.LoanTenure = tenure

	if v := r.FormValue("monthly_income"); v != "" {
		income, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid monthly_income")
			return
		}
		input.MonthlyIncome = &income
	}

	file, header, err := r.FormFile("certificate")
	if err != nil {
		respondError(w, http.StatusBadRequest, "certificate file is required")
		return
	}
	defer file.Close()

	app, err := h.svc.SubmitLoan(r.Context(), input, file, header.Filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// ListLoans handles admin listing with optional status and email filters
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	email := r.URL.Query().Get("email")

	apps, err := h.svc.ListLoans(r.Context(), status, email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if apps == nil {
		apps = []models.LoanApplication{}
	}
	respondJSON(w, http.StatusOK, apps)
}

// GetLoan handles admin retrieval of a single application
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// UpdateLoanStatus handles an admin decision on a pending application
func (h *Handler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	status := r.FormValue("status")

	app, err := h.svc.DecideLoan(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

// GetCertificate streams the stored supporting document back to the admin
func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	certificate, filename, err := h.svc.GetCertificate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer certificate.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	io.Copy(w, certificate)
}

// CreateStatusCheck handles a health-ping creation
func (h *Handler) CreateStatusCheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientName string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	check, err := h.svc.CreateStatusCheck(r.Context(), body.ClientName)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// ListStatusChecks handles listing of health-ping records
func (h *Handler) ListStatusChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.svc.ListStatusChecks(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if checks == nil {
		checks = []models.StatusCheck{}
	}
	respondJSON(w, http.StatusOK, checks)
}

func optionalField(r *http.Request, name string) *string {
	if v := r.FormValue(name); v != "" {
		return &v
	}
	return nil
}

func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrAlreadyDecided):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "Loan not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, detail string) {
	respondJSON(w, code, map[string]string{"detail": detail})
}
