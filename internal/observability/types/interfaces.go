// Package types defines the contracts for structured logging and metrics
// collection used throughout the service.
//
// The package follows a provider pattern: components receive Logger and
// Metrics instances from a central Provider instead of constructing their own.
package types

import (
	"context"
	"io"
)

// Logger defines the contract for structured logging. Implementations emit
// JSON-formatted output suitable for log aggregation systems. All methods are
// context-aware so request identifiers can be propagated into log entries.
type Logger interface {
	// Info logs general operational information.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs a failure together with the causing error.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a potentially harmful situation that does not prevent
	// operation.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs detailed troubleshooting information, typically filtered
	// out in production.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new Logger that includes the given fields in all
	// subsequent entries.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection. Implementations expose
// Prometheus-compatible metrics for monitoring and alerting.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type.
	RecordSuccess(operationType string)

	// RecordError increments the error counters for an operation and error
	// category (e.g. "extract", "bot_check").
	RecordError(operationType string, errorType string)

	// RecordDuration records an operation duration in seconds. Use
	// time.Since(start).Seconds().
	RecordDuration(operation string, duration float64)

	// RecordFileSize records the size of a processed file in bytes, labeled
	// by file type (extension).
	RecordFileSize(fileType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge. Call in a defer so it
	// runs on error paths too.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs. Values must
// be JSON-serializable.
type Fields map[string]interface{}

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the service in logs and metric names.
	ServiceName string

	// Environment is the deployment environment ("local", "production", ...).
	Environment string

	// LogLevel is the minimum level to emit: "debug", "info", "warn",
	// "error".
	LogLevel string

	// LogOutput is where log entries are written. Defaults to os.Stdout.
	LogOutput io.Writer

	// AdditionalFields are included in every log entry from every component.
	AdditionalFields Fields
}

// Provider manages the lifecycle of observability components, acting as a
// factory for per-component Logger and Metrics instances.
type Provider interface {
	// Logger returns the Logger for the named component. Repeated calls
	// with the same name return the same instance.
	Logger(component string) Logger

	// Metrics returns the Metrics collector for the named component.
	// Repeated calls with the same name return the same instance.
	Metrics(component string) Metrics

	// Close releases provider resources.
	Close() error
}
