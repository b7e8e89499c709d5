package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, company_id, filename, original_name, storage_path, size, content_type,
	status, error_message, raw_text, fields, created_at, updated_at, completed_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	fields, err := marshalFields(doc.Fields)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		nullString(doc.CompanyID),
		doc.Filename,
		doc.OriginalName,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		string(doc.Status),
		doc.ErrorMessage,
		doc.RawText,
		fields,
		doc.CreatedAt,
		doc.UpdatedAt,
		nullTime(doc.CompletedAt),
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].RawText = ""
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update writes the mutable columns of a document.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) error {
	fields, err := marshalFields(doc.Fields)
	if err != nil {
		return err
	}
	const q = `
		UPDATE documents
		SET company_id = $2, status = $3, error_message = $4, raw_text = $5,
		    fields = $6, updated_at = $7, completed_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		nullString(doc.CompanyID),
		string(doc.Status),
		doc.ErrorMessage,
		doc.RawText,
		fields,
		doc.UpdatedAt,
		nullTime(doc.CompletedAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkParsing claims a document for parsing. The status guard lives in the
// WHERE clause so two concurrent requests cannot both win.
func (r *DocumentPostgres) MarkParsing(ctx context.Context, id string, at time.Time) (bool, error) {
	const q = `
		UPDATE documents
		SET status = $2, error_message = '', updated_at = $3
		WHERE id = $1 AND status NOT IN ($4, $5)
	`
	res, err := r.db.ExecContext(ctx, q, id,
		string(model.StatusParsing), at,
		string(model.StatusParsing), string(model.StatusCompleted),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListCompletedByCompany returns the completed documents of a company, oldest first.
func (r *DocumentPostgres) ListCompletedByCompany(ctx context.Context, companyID string) ([]model.Document, error) {
	q := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND status = $2
		ORDER BY completed_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, companyID, string(model.StatusCompleted))
	if err != nil {
		return nil, err
	}
	return scanDocuments(rows)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d           model.Document
		companyID   sql.NullString
		status      string
		fields      []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&companyID,
		&d.Filename,
		&d.OriginalName,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&status,
		&d.ErrorMessage,
		&d.RawText,
		&fields,
		&d.CreatedAt,
		&d.UpdatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	d.CompanyID = companyID.String
	d.Status = model.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		d.CompletedAt = &t
	}
	if err := unmarshalJSON(fields, &d.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of document %s: %w", d.ID, err)
	}
	if d.Fields == nil {
		d.Fields = []reconcile.Field{}
	}
	return &d, nil
}

func scanDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func marshalFields(fields []reconcile.Field) ([]byte, error) {
	if fields == nil {
		fields = []reconcile.Field{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return b, nil
}
