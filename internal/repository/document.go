package repository

import (
	"context"
	"time"

	"github.com/camerontabion/JurisFlo/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// The caller should provide required fields (e.g., ID, CreatedAt) according to the database schema defaults.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and total rows count for the given filter.
	// Raw text is not loaded.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists the mutable columns of doc: company, status, error message,
	// raw text, fields and timestamps. Returns sql.ErrNoRows if the row is gone.
	Update(ctx context.Context, doc *model.Document) error

	// MarkParsing moves a document into parsing in a single conditional write.
	// It reports false when the row is missing or already parsing or completed.
	MarkParsing(ctx context.Context, id string, at time.Time) (bool, error)

	// ListCompletedByCompany returns every completed document attached to the company.
	ListCompletedByCompany(ctx context.Context, companyID string) ([]model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
