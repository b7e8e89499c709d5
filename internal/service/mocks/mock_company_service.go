package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/service"
)

type MockCompanyService struct {
	mock.Mock
}

var _ service.CompanyService = (*MockCompanyService)(nil)

func (m *MockCompanyService) company(args mock.Arguments) (*model.Company, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyService) Create(ctx context.Context, name string) (*model.Company, error) {
	return m.company(m.Called(ctx, name))
}

func (m *MockCompanyService) List(ctx context.Context, limit, offset int) (*service.CompanyListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompanyListResult), args.Error(1)
}

func (m *MockCompanyService) Get(ctx context.Context, id string) (*model.Company, error) {
	return m.company(m.Called(ctx, id))
}

func (m *MockCompanyService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyService) Data(ctx context.Context, id string) (reconcile.Data, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(reconcile.Data), args.Error(1)
}

func (m *MockCompanyService) Rebuild(ctx context.Context, id string) (*model.Company, error) {
	return m.company(m.Called(ctx, id))
}
