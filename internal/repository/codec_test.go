package repository

import (
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeCodecRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Now().UTC(),
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2025, 1, 2, 3, 4, 5, 999999999, time.UTC),
		// non-UTC input must come back as the same instant
		time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3*3600)),
	}
	for _, want := range times {
		got, err := decodeTime(encodeTime(want))
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "round trip of %v produced %v", want, got)
	}
}

func TestTimeCodecLexicalOrderMatchesChronological(t *testing.T) {
	// The store sorts created_at as text, so encoded order must match
	// time order even across nanosecond-only differences.
	pairs := [][2]time.Time{
		{
			time.Date(2025, 1, 2, 3, 4, 5, 1, time.UTC),
			time.Date(2025, 1, 2, 3, 4, 5, 2, time.UTC),
		},
		{
			time.Date(2025, 1, 2, 3, 4, 5, 900000000, time.UTC),
			time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC),
		},
		{
			time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, p := range pairs {
		assert.Less(t, encodeTime(p[0]), encodeTime(p[1]))
	}
}

func TestLoanDocumentRoundTrip(t *testing.T) {
	employer := "ACME"
	income := 4200.50
	now := time.Now().UTC()

	app := models.LoanApplication{
		ID:              "app-1",
		FirstName:       "A",
		LastName:        "B",
		DateOfBirth:     "1990-01-01",
		Gender:          "female",
		Email:           "a@example.com",
		Phone:           "+10000000000",
		Street:          "1 Main St",
		City:            "Springfield",
		Region:          "IL",
		PostalCode:      "62701",
		EmploymentType:  "salaried",
		EmployerName:    &employer,
		MonthlyIncome:   &income,
		LoanAmount:      50000,
		LoanTenure:      12,
		CertificatePath: "token_income.pdf",
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	got, err := newLoanDocument(&app).toModel()
	require.NoError(t, err)

	assert.True(t, got.CreatedAt.Equal(app.CreatedAt))
	assert.True(t, got.UpdatedAt.Equal(app.UpdatedAt))

	// remaining fields must survive untouched
	got.CreatedAt = app.CreatedAt
	got.UpdatedAt = app.UpdatedAt
	assert.Equal(t, app, got)
}

func TestLoanDocumentRejectsMalformedTimestamp(t *testing.T) {
	doc := loanDocument{CreatedAt: "yesterday", UpdatedAt: encodeTime(time.Now())}
	_, err := doc.toModel()
	assert.Error(t, err)
}
