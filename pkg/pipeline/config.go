package pipeline

import (
	"runtime"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// FailurePolicy controls what happens to the rest of a document when one
// sentence fails within a stage.
type FailurePolicy int

const (
	// ContinueOnError records the failure and keeps annotating the remaining
	// sentences. The failed sentence keeps the layers written by earlier
	// stages and is left without the failed layer.
	ContinueOnError FailurePolicy = iota

	// AbortDocument cancels the remaining sentences of that stage for the
	// document after the first failure.
	AbortDocument
)

// String returns the policy's configuration name.
func (p FailurePolicy) String() string {
	switch p {
	case AbortDocument:
		return "abort"
	default:
		return "continue"
	}
}

// ParseFailurePolicy converts a configuration string to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "continue":
		return ContinueOnError, nil
	case "abort":
		return AbortDocument, nil
	default:
		return ContinueOnError, apperrors.Configurationf("unknown failure policy %q (want continue or abort)", s)
	}
}

// Config configures a pipeline.
type Config struct {
	// NThreads is the number of engine instances (and workers) per stage
	// run. If 0, it defaults to runtime.NumCPU().
	NThreads int

	// FailurePolicy controls per-sentence failure handling.
	// Default: ContinueOnError.
	FailurePolicy FailurePolicy

	// Logger for structured logging. If nil, a no-op logger is used.
	Logger *zap.Logger

	// Tracer for per-document and per-stage spans. Optional.
	Tracer trace.Tracer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		NThreads:      runtime.NumCPU(),
		FailurePolicy: ContinueOnError,
	}
}

// Validate validates the configuration and applies defaults.
func (c *Config) Validate() {
	if c.NThreads <= 0 {
		c.NThreads = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// WithNThreads sets the engine instance count.
func (c Config) WithNThreads(n int) Config {
	c.NThreads = n
	return c
}

// WithFailurePolicy sets the failure policy.
func (c Config) WithFailurePolicy(p FailurePolicy) Config {
	c.FailurePolicy = p
	return c
}

// WithLogger sets the logger.
func (c Config) WithLogger(logger *zap.Logger) Config {
	c.Logger = logger
	return c
}

// WithTracer sets the tracer.
func (c Config) WithTracer(tracer trace.Tracer) Config {
	c.Tracer = tracer
	return c
}
