package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

type MockCompanyRepository struct {
	mock.Mock
}

var _ repository.CompanyRepository = (*MockCompanyRepository)(nil)

func (m *MockCompanyRepository) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id string) (*model.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Company]), args.Error(1)
}

func (m *MockCompanyRepository) UpdateData(ctx context.Context, id string, data reconcile.Data) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
