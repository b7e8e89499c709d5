package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) document(args mock.Arguments) (*model.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, companyID string) (*model.Document, error) {
	return m.document(m.Called(ctx, r, originalFilename, contentType, size, companyID))
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return m.document(m.Called(ctx, id))
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) Parse(ctx context.Context, id string) (*model.Document, error) {
	return m.document(m.Called(ctx, id))
}

func (m *MockDocumentService) ParseAsync(ctx context.Context, id string) (*model.Document, error) {
	return m.document(m.Called(ctx, id))
}

func (m *MockDocumentService) UpdateField(ctx context.Context, id, key, value string) (*model.Document, error) {
	return m.document(m.Called(ctx, id, key, value))
}

func (m *MockDocumentService) Complete(ctx context.Context, id string) (*model.Document, error) {
	return m.document(m.Called(ctx, id))
}

func (m *MockDocumentService) AssignCompany(ctx context.Context, id, companyID string) (*model.Document, error) {
	return m.document(m.Called(ctx, id, companyID))
}

func (m *MockDocumentService) Render(ctx context.Context, id string) (*service.Rendered, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Rendered), args.Error(1)
}

func (m *MockDocumentService) OriginalURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Context(ctx context.Context, id, key string) (*service.FieldContext, error) {
	args := m.Called(ctx, id, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FieldContext), args.Error(1)
}

func (m *MockDocumentService) Wait() {
	m.Called()
}
