// Package mocks provides mock implementations for testing
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// MockLogger is a mock implementation of the Logger interface
type MockLogger struct {
	mock.Mock
}

// Info mocks the Info method
func (m *MockLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// Error mocks the Error method
func (m *MockLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	m.Called(ctx, msg, err, fields)
}

// Warn mocks the Warn method
func (m *MockLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// Debug mocks the Debug method
func (m *MockLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// WithFields mocks the WithFields method
func (m *MockLogger) WithFields(fields types.Fields) types.Logger {
	args := m.Called(fields)
	if logger, ok := args.Get(0).(types.Logger); ok {
		return logger
	}
	return m
}

// NopLogger is a Logger that discards everything. Handy when a test does not
// care about log assertions.
type NopLogger struct{}

func (NopLogger) Info(context.Context, string, types.Fields)         {}
func (NopLogger) Error(context.Context, string, error, types.Fields) {}
func (NopLogger) Warn(context.Context, string, types.Fields)         {}
func (NopLogger) Debug(context.Context, string, types.Fields)        {}
func (n NopLogger) WithFields(types.Fields) types.Logger             { return n }
