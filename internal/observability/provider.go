// Package observability provides a centralized provider for the logging and
// metrics components used throughout the service.
package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mrrifat/anydownloader/internal/observability/logger"
	"github.com/mrrifat/anydownloader/internal/observability/metrics"
	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// Logger is a type alias for the Logger interface from the types package.
type Logger = types.Logger

// Metrics is a type alias for the Metrics interface from the types package.
type Metrics = types.Metrics

// Fields is a type alias for structured logging fields.
type Fields = types.Fields

// Config is a type alias for the observability configuration.
type Config = types.Config

// Provider is a type alias for the Provider interface from the types package.
type Provider = types.Provider

// DefaultProvider implements the Provider interface. It manages Logger and
// Metrics instances per component with lazy, thread-safe initialization.
type DefaultProvider struct {
	config  *Config
	loggers map[string]Logger
	metrics map[string]Metrics
	mu      sync.RWMutex
}

// NewProvider creates a new observability provider. If LogOutput is not set
// it defaults to os.Stdout.
func NewProvider(config *Config) Provider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stdout
	}

	return &DefaultProvider{
		config:  config,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// Logger returns the Logger for the named component, creating it on first
// access. The logger carries a "component" field and a service name of the
// form "{service}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	serviceName := fmt.Sprintf("%s.%s", p.config.ServiceName, component)

	l := logger.New(
		serviceName,
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)

	p.loggers[component] = l
	return l
}

// Metrics returns the Metrics collector for the named component, creating it
// on first access. Metric names are prefixed "{service}_{component}" with
// non-identifier characters normalized for Prometheus.
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if m, exists := p.metrics[component]; exists {
		return m
	}

	prefix := metricName(fmt.Sprintf("%s_%s", p.config.ServiceName, component))
	m := metrics.New(prefix)

	p.metrics[component] = m
	return m
}

// Close releases provider resources. The JSON logger and Prometheus registry
// hold no resources that need explicit cleanup.
func (p *DefaultProvider) Close() error {
	return nil
}

// metricName normalizes a service/component name into a valid Prometheus
// metric name prefix.
func metricName(name string) string {
	r := strings.NewReplacer("-", "_", ".", "_", " ", "_", "/", "_")
	return r.Replace(strings.ToLower(name))
}
