package tasks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/technosupport/mxtools/internal/mobotix"
)

// MockCamera is a testify mock of mobotix.Camera.
type MockCamera struct {
	mock.Mock
}

func (m *MockCamera) Get(ctx context.Context, target mobotix.Target, path string) (string, error) {
	args := m.Called(ctx, target, path)
	return args.String(0), args.Error(1)
}

func (m *MockCamera) RemoteConfig(ctx context.Context, target mobotix.Target, script []byte) (string, error) {
	args := m.Called(ctx, target, string(script))
	return args.String(0), args.Error(1)
}
