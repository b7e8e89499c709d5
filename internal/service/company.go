package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

// CompanyListResult is the service-level DTO for paginated companies.
type CompanyListResult struct {
	Items []model.Company `json:"data"`
	Total int             `json:"total"`
}

// CompanyService manages companies and their aggregated data.
type CompanyService interface {
	Create(ctx context.Context, name string) (*model.Company, error)
	List(ctx context.Context, limit, offset int) (*CompanyListResult, error)
	Get(ctx context.Context, id string) (*model.Company, error)

	// Delete removes the company. Its documents stay, detached.
	Delete(ctx context.Context, id string) error

	// Data returns the aggregated company-level values.
	Data(ctx context.Context, id string) (reconcile.Data, error)

	// Rebuild recomputes the data from every completed document of the
	// company, discarding stale entries.
	Rebuild(ctx context.Context, id string) (*model.Company, error)
}

type companyService struct {
	repo repository.CompanyRepository
	sync companySync
	now  func() time.Time
}

// NewCompanyService constructs a new CompanyService.
func NewCompanyService(repo repository.CompanyRepository, docs repository.DocumentRepository) CompanyService {
	return &companyService{
		repo: repo,
		sync: companySync{docs: docs, companies: repo},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *companyService) Create(ctx context.Context, name string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := s.now()
	return s.repo.Create(ctx, &model.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Data:      reconcile.Data{},
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *companyService) List(ctx context.Context, limit, offset int) (*CompanyListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &CompanyListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *companyService) Get(ctx context.Context, id string) (*model.Company, error) {
	return s.sync.find(ctx, id)
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	if _, err := s.sync.find(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *companyService) Data(ctx context.Context, id string) (reconcile.Data, error) {
	c, err := s.sync.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Data, nil
}

func (s *companyService) Rebuild(ctx context.Context, id string) (*model.Company, error) {
	c, err := s.sync.rebuild(ctx, id)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	return c, nil
}
