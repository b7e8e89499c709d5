package repository

import (
	"context"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

// CompanyRepository defines data access for companies.
type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) (*model.Company, error)
	FindByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Company], error)

	// UpdateData replaces the company's aggregated data.
	// Returns sql.ErrNoRows if the company does not exist.
	UpdateData(ctx context.Context, id string, data reconcile.Data) error

	// Delete removes a company. Attached documents are detached by the schema.
	Delete(ctx context.Context, id string) error
}
