package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	loansCollection        = "loan_applications"
	statusChecksCollection = "status_checks"

	// maxListResults caps list queries. This is a pagination placeholder,
	// not a cursor.
	maxListResults = 1000

	// timeLayout is RFC3339 with fixed nine-digit nanoseconds. The store
	// keeps timestamps as text and sorts them lexicographically, so the
	// width must not vary.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	// ErrNotFound indicates no record exists for the given id.
	ErrNotFound = errors.New("loan application not found")
	// ErrAlreadyDecided indicates the record left PENDING before the update.
	ErrAlreadyDecided = errors.New("loan application already decided")
)

// Repository provides document store operations
type Repository struct {
	loans        *mongo.Collection
	statusChecks *mongo.Collection
}

// NewRepository initializes a new repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		loans:        db.Collection(loansCollection),
		statusChecks: db.Collection(statusChecksCollection),
	}
}

// LoanFilter narrows list queries. Empty fields do not filter; non-empty
// fields are ANDed. Status must already be canonical upper-case.
type LoanFilter struct {
	Status string
	Email  string
}

// loanDocument is the persisted shape of a loan application. Timestamps are
// stored as text and parsed back on every read.
type loanDocument struct {
	models.LoanApplication `bson:",inline"`

	CreatedAt string `bson:"created_at"`
	UpdatedAt string `bson:"updated_at"`
}

func newLoanDocument(app *models.LoanApplication) loanDocument {
	return loanDocument{
		LoanApplication: *app,
		CreatedAt:       encodeTime(app.CreatedAt),
		UpdatedAt:       encodeTime(app.UpdatedAt),
	}
}

func (d loanDocument) toModel() (models.LoanApplication, error) {
	app := d.LoanApplication
	created, err := decodeTime(d.CreatedAt)
	if err != nil {
		return app, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updated, err := decodeTime(d.UpdatedAt)
	if err != nil {
		return app, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	app.CreatedAt = created
	app.UpdatedAt = updated
	return app, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// InsertLoan persists a new loan application
func (r *Repository) InsertLoan(ctx context.Context, app *models.LoanApplication) error {
	if _, err := r.loans.InsertOne(ctx, newLoanDocument(app)); err != nil {
		return fmt.Errorf("failed to insert loan application: %w", err)
	}
	return nil
}

// FindLoans returns applications matching the filter, most recent first,
// capped at maxListResults
func (r *Repository) FindLoans(ctx context.Context, filter LoanFilter) ([]models.LoanApplication, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(maxListResults)

	cur, err := r.loans.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan applications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []loanDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode loan applications: %w", err)
	}

	apps := make([]models.LoanApplication, 0, len(docs))
	for _, doc := range docs {
		app, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// FindLoanByID retrieves a single application by its application-level id
func (r *Repository) FindLoanByID(ctx context.Context, id string) (*models.LoanApplication, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})

	var doc loanDocument
	err := r.loans.FindOne(ctx, bson.M{"id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan application: %w", err)
	}

	app, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateLoanStatus atomically moves a PENDING application to the given
// terminal status and returns the post-update record. The filter includes
// the PENDING precondition, so concurrent decisions serialize at the store
// and at most one wins.
func (r *Repository) UpdateLoanStatus(ctx context.Context, id, status string, now time.Time) (*models.LoanApplication, error) {
	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": encodeTime(now),
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 0})

	var doc loanDocument
	err := r.loans.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the record does not exist or it is no longer PENDING.
		if _, lookupErr := r.FindLoanByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrAlreadyDecided
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update loan status: %w", err)
	}

	app, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// statusCheckDocument is the persisted shape of a status check.
type statusCheckDocument struct {
	models.StatusCheck `bson:",inline"`

	Timestamp string `bson:"timestamp"`
}

// InsertStatusCheck persists a health-ping record
func (r *Repository) InsertStatusCheck(ctx context.Context, check *models.StatusCheck) error {
	doc := statusCheckDocument{
		StatusCheck: *check,
		Timestamp:   encodeTime(check.Timestamp),
	}
	if _, err := r.statusChecks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert status check: %w", err)
	}
	return nil
}

// ListStatusChecks returns stored health-ping records, capped at maxListResults
func (r *Repository) ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetLimit(maxListResults)

	cur, err := r.statusChecks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find status checks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []statusCheckDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode status checks: %w", err)
	}

	checks := make([]models.StatusCheck, 0, len(docs))
	for _, doc := range docs {
		check := doc.StatusCheck
		ts, err := decodeTime(doc.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		check.Timestamp = ts
		checks = append(checks, check)
	}
	return checks, nil
}
