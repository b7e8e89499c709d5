package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

type MockMessageRepository struct {
	mock.Mock
}

var _ repository.MessageRepository = (*MockMessageRepository)(nil)

func (m *MockMessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]model.Message, error) {
	args := m.Called(ctx, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}
