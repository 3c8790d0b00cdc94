package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"idcardgen/internal/port"
)

// MockArtifactGenerator is a mock implementation of port.ArtifactGenerator.
type MockArtifactGenerator struct {
	mock.Mock
}

func (m *MockArtifactGenerator) Generate(ctx context.Context, req port.GenerateRequest) (*port.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GenerateResult), args.Error(1)
}

func (m *MockArtifactGenerator) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
