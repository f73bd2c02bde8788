package mocks

import "github.com/stretchr/testify/mock"

// MockMetrics is a mock implementation of the Metrics interface
type MockMetrics struct {
	mock.Mock
}

// RecordSuccess mocks the RecordSuccess method
func (m *MockMetrics) RecordSuccess(operationType string) {
	m.Called(operationType)
}

// RecordError mocks the RecordError method
func (m *MockMetrics) RecordError(operationType string, errorType string) {
	m.Called(operationType, errorType)
}

// RecordDuration mocks the RecordDuration method
func (m *MockMetrics) RecordDuration(operation string, duration float64) {
	m.Called(operation, duration)
}

// RecordFileSize mocks the RecordFileSize method
func (m *MockMetrics) RecordFileSize(fileType string, bytes int64) {
	m.Called(fileType, bytes)
}

// StartOperation mocks the StartOperation method
func (m *MockMetrics) StartOperation(operation string) {
	m.Called(operation)
}

// EndOperation mocks the EndOperation method
func (m *MockMetrics) EndOperation(operation string) {
	m.Called(operation)
}

// NopMetrics is a Metrics implementation that discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordSuccess(string)          {}
func (NopMetrics) RecordError(string, string)    {}
func (NopMetrics) RecordDuration(string, float64) {}
func (NopMetrics) RecordFileSize(string, int64)  {}
func (NopMetrics) StartOperation(string)         {}
func (NopMetrics) EndOperation(string)           {}
