package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"idcardgen/internal/domain"
	"idcardgen/internal/port"
)

// MockScratchStorage is a mock implementation of port.ScratchStorage.
type MockScratchStorage struct {
	mock.Mock
}

func (m *MockScratchStorage) Prepare() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockScratchStorage) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockScratchStorage) SaveUpload(ctx context.Context, input port.SaveInput) (*domain.UploadedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedDocument), args.Error(1)
}

func (m *MockScratchStorage) ResolveArtifact(ctx context.Context, name string) (*domain.GeneratedArtifact, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedArtifact), args.Error(1)
}

func (m *MockScratchStorage) Remove(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
