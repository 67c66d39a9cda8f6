package engine

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codecrafters-io/sqlite-starter-go/internal/page"
)

// Config holds engine-wide options, assembled via the functional-options
// pattern.
type Config struct {
	Debug           bool
	Trace           bool
	ReadTimeout     time.Duration
	ValidationLevel page.ValidationLevel
	Logger          logrus.FieldLogger
}

// Option configures a Config.
type Option func(*Config)

// WithDebug enables debug-level logging of component entry/exit and schema
// loading.
func WithDebug(enabled bool) Option {
	return func(c *Config) { c.Debug = enabled }
}

// WithTrace enables trace-level logging of every cell visited during a scan.
// Trace implies Debug.
func WithTrace(enabled bool) Option {
	return func(c *Config) {
		c.Trace = enabled
		if enabled {
			c.Debug = true
		}
	}
}

// WithReadTimeout bounds how long any single page fetch may take. Zero (the
// default) leaves the caller's context as the only deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithValidationLevel sets how strictly the 100-byte file header is checked
// before the engine trusts the rest of the file.
func WithValidationLevel(level page.ValidationLevel) Option {
	return func(c *Config) { c.ValidationLevel = level }
}

// WithLogger overrides the logger built from Debug/Trace with a
// caller-supplied one, letting an embedder route reader diagnostics into its
// own logging pipeline.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Config) { c.Logger = log }
}

// DefaultConfig returns the configuration Open starts from before applying
// any Options.
func DefaultConfig() Config {
	return Config{ValidationLevel: page.ValidationBasic}
}

// ResourceManager closes a set of resources in LIFO order, so the last
// resource opened is the first one torn down.
type ResourceManager struct {
	resources []io.Closer
}

// NewResourceManager builds an empty ResourceManager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{}
}

// Add registers a resource for cleanup.
func (rm *ResourceManager) Add(resource io.Closer) {
	rm.resources = append(rm.resources, resource)
}

// Close closes every registered resource in reverse registration order,
// returning the last error encountered, if any.
func (rm *ResourceManager) Close() error {
	var lastErr error
	for i := len(rm.resources) - 1; i >= 0; i-- {
		if err := rm.resources[i].Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
