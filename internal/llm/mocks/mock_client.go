package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

type MockClient struct {
	mock.Mock
}

var _ llm.Client = (*MockClient)(nil)

func (m *MockClient) ExtractFields(ctx context.Context, text string) ([]reconcile.Field, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconcile.Field), args.Error(1)
}

func (m *MockClient) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatReply, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(llm.ChatReply), args.Error(1)
}
