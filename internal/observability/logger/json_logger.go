// Package logger provides a structured JSON logger with consistent field
// structure for efficient querying in log aggregation systems.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

// Log level constants ordered by severity (lowest to highest).
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ctxKey is the private type for context values this logger extracts.
type ctxKey string

// RequestIDKey is the context key under which the HTTP layer stores the
// per-request correlation identifier.
const RequestIDKey ctxKey = "request_id"

// ParseLevel converts a string representation to a LogLevel. Unrecognized
// levels default to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// JSONLogger implements the Logger interface with line-delimited JSON output.
// Each entry carries timestamp, level, service name, environment and hostname
// alongside caller-supplied fields. Safe for concurrent use.
type JSONLogger struct {
	mu               sync.RWMutex
	output           io.Writer
	serviceName      string
	environment      string
	hostname         string
	minLevel         LogLevel
	persistentFields types.Fields
}

// New creates a new JSONLogger. The hostname is detected automatically; if
// output is nil it defaults to os.Stdout.
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *JSONLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stdout
	}

	return &JSONLogger{
		output:           output,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         ParseLevel(logLevel),
		persistentFields: additionalFields,
	}
}

// Info logs an informational message at INFO level.
func (l *JSONLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > InfoLevel {
		return
	}
	l.log(ctx, InfoLevel, msg, nil, fields)
}

// Error logs an error message at ERROR level. The error object is included
// with both its message and concrete type for debugging.
func (l *JSONLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	if l.minLevel > ErrorLevel {
		return
	}
	l.log(ctx, ErrorLevel, msg, err, fields)
}

// Warn logs a warning message at WARN level.
func (l *JSONLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > WarnLevel {
		return
	}
	l.log(ctx, WarnLevel, msg, nil, fields)
}

// Debug logs a debug message at DEBUG level.
func (l *JSONLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > DebugLevel {
		return
	}
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a new JSONLogger that adds the given fields to every
// entry, inheriting all other configuration from the parent.
func (l *JSONLogger) WithFields(fields types.Fields) types.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(types.Fields)
	for k, v := range l.persistentFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &JSONLogger{
		output:           l.output,
		serviceName:      l.serviceName,
		environment:      l.environment,
		hostname:         l.hostname,
		minLevel:         l.minLevel,
		persistentFields: newFields,
	}
}

// log combines standard fields, context values, persistent fields and
// call-specific fields into a single JSON object and writes it as one line.
func (l *JSONLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := make(types.Fields)

	// Standard fields
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["service"] = l.serviceName
	entry["env"] = l.environment
	entry["hostname"] = l.hostname
	entry["message"] = msg

	// Extract context values
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		entry["request_id"] = requestID
	}

	// Add error
	if err != nil {
		entry["error"] = err.Error()
		entry["error_type"] = fmt.Sprintf("%T", err)
	}

	// Add persistent fields
	for k, v := range l.persistentFields {
		entry[k] = v
	}

	// Add call-specific fields
	for k, v := range fields {
		entry[k] = v
	}

	// Output as JSON
	if jsonBytes, err := json.Marshal(entry); err == nil {
		l.output.Write(jsonBytes)
		l.output.Write([]byte("\n"))
	}
}
