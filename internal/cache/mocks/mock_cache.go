package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/camerontabion/JurisFlo/internal/cache"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

type MockExtractionCache struct {
	mock.Mock
}

var _ cache.ExtractionCache = (*MockExtractionCache)(nil)

func (m *MockExtractionCache) Get(ctx context.Context, text string) ([]reconcile.Field, bool, error) {
	args := m.Called(ctx, text)
	var fields []reconcile.Field
	if v := args.Get(0); v != nil {
		fields = v.([]reconcile.Field)
	}
	return fields, args.Bool(1), args.Error(2)
}

func (m *MockExtractionCache) Set(ctx context.Context, text string, fields []reconcile.Field) error {
	args := m.Called(ctx, text, fields)
	return args.Error(0)
}
