package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"idcardgen/internal/domain"
	"idcardgen/internal/service"
)

// MockGenerateService is a mock implementation of service.GenerateService.
type MockGenerateService struct {
	mock.Mock
}

func (m *MockGenerateService) Generate(ctx context.Context, input service.GenerateInput) (*domain.GeneratedArtifact, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedArtifact), args.Error(1)
}

func (m *MockGenerateService) Discard(ctx context.Context, artifact *domain.GeneratedArtifact) {
	m.Called(ctx, artifact)
}

func (m *MockGenerateService) ResolveTemplate(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}
