package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

// CompanyPostgres is a PostgreSQL implementation of repository.CompanyRepository.
// Aggregated company data is stored as a JSONB object keyed by canonical field key.
type CompanyPostgres struct {
	db *sql.DB
}

// NewCompanyPostgres creates a new CompanyPostgres repository.
func NewCompanyPostgres(db *sql.DB) *CompanyPostgres {
	return &CompanyPostgres{db: db}
}

var _ repository.CompanyRepository = (*CompanyPostgres)(nil)

// Create inserts a new company row.
func (r *CompanyPostgres) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	data, err := marshalData(c.Data)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO companies (id, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, data, created_at, updated_at
	`
	return scanCompany(r.db.QueryRowContext(ctx, q, c.ID, c.Name, data, c.CreatedAt, c.UpdatedAt))
}

// FindByID fetches a single company by its ID.
func (r *CompanyPostgres) FindByID(ctx context.Context, id string) (*model.Company, error) {
	const q = `
		SELECT id, name, data, created_at, updated_at
		FROM companies
		WHERE id = $1
	`
	return scanCompany(r.db.QueryRowContext(ctx, q, id))
}

// List returns companies ordered by name.
func (r *CompanyPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	const qCount = `SELECT COUNT(*) FROM companies`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, data, created_at, updated_at
		FROM companies
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Company]{Items: items, Total: total}, nil
}

// UpdateData replaces the aggregated data of a company.
func (r *CompanyPostgres) UpdateData(ctx context.Context, id string, data reconcile.Data) error {
	b, err := marshalData(data)
	if err != nil {
		return err
	}
	const q = `UPDATE companies SET data = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, b)
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

// Delete removes a company by ID. It does not return an error if the row does not exist.
func (r *CompanyPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM companies WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func scanCompany(row rowScanner) (*model.Company, error) {
	var (
		c    model.Company
		data []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &data, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(data, &c.Data); err != nil {
		return nil, fmt.Errorf("decode data of company %s: %w", c.ID, err)
	}
	if c.Data == nil {
		c.Data = reconcile.Data{}
	}
	return &c, nil
}

func marshalData(data reconcile.Data) ([]byte, error) {
	if data == nil {
		data = reconcile.Data{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode company data: %w", err)
	}
	return b, nil
}
