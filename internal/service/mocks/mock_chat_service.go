package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/service"
)

type MockChatService struct {
	mock.Mock
}

var _ service.ChatService = (*MockChatService)(nil)

func (m *MockChatService) Send(ctx context.Context, documentID, content string) (*service.ChatResult, error) {
	args := m.Called(ctx, documentID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatResult), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, documentID string) ([]model.Message, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}
