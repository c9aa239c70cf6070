// Package errors defines the error taxonomy shared by the annotation pipeline.
//
// Errors fall into four categories: configuration errors abort before any
// annotation work begins, consistency errors are fatal for the enclosing
// sentence, annotation errors are recoverable per-sentence failures, and
// lifecycle errors are fatal at stage initialization or teardown.
package errors

import (
	"errors"
	"fmt"
)

// Error codes, one per category of the taxonomy.
const (
	CodeConfiguration = "CONFIGURATION"
	CodeConsistency   = "CONSISTENCY"
	CodeAnnotation    = "ANNOTATION"
	CodeLifecycle     = "LIFECYCLE"
)

var (
	// ErrUnsatisfiedRequirement indicates a stage requires a capability no
	// earlier stage satisfies.
	ErrUnsatisfiedRequirement = errors.New("unsatisfied capability requirement")

	// ErrMissingLayer indicates a stage expected an annotation layer that is
	// not present on the sentence.
	ErrMissingLayer = errors.New("required annotation layer missing")

	// ErrLeafTokenMismatch indicates a parse tree's leaf count does not match
	// the sentence's token count.
	ErrLeafTokenMismatch = errors.New("tree leaf count does not match token count")

	// ErrDegenerateParse indicates an engine produced a single-node tree for a
	// non-empty input, the signature of a parse failure.
	ErrDegenerateParse = errors.New("degenerate parse result")

	// ErrMalformedResponse indicates an engine response could not be decoded.
	ErrMalformedResponse = errors.New("malformed engine response")

	// ErrEngineStart indicates a backing engine resource could not be acquired.
	ErrEngineStart = errors.New("engine start failed")

	// ErrEngineStop indicates a backing engine resource could not be released.
	ErrEngineStop = errors.New("engine stop failed")

	// ErrEngineClosed indicates an annotation request was made against a
	// closed engine instance.
	ErrEngineClosed = errors.New("engine is closed")

	// ErrPipelineClosed indicates a document was submitted to a closed pipeline.
	ErrPipelineClosed = errors.New("pipeline is closed")
)

// Error is a structured pipeline error carrying enough context to be
// actionable without source inspection.
type Error struct {
	// Code is the machine-readable taxonomy code.
	Code string

	// Message is a human-readable description.
	Message string

	// Stage is the name of the stage the error originated from, if any.
	Stage string

	// DocumentID identifies the document being processed, if any.
	DocumentID string

	// SentenceID identifies the sentence being processed, if any.
	SentenceID string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "[" + e.Code + "]"
	if e.Stage != "" {
		msg += " stage " + e.Stage
	}
	if e.SentenceID != "" {
		msg += " sentence " + e.SentenceID
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration creates a configuration error.
func Configuration(message string, err error) *Error {
	return &Error{Code: CodeConfiguration, Message: message, Err: err}
}

// Consistency creates an engine consistency error.
func Consistency(message string, err error) *Error {
	return &Error{Code: CodeConsistency, Message: message, Err: err}
}

// Annotation creates a per-sentence annotation error.
func Annotation(message string, err error) *Error {
	return &Error{Code: CodeAnnotation, Message: message, Err: err}
}

// Lifecycle creates a resource lifecycle error.
func Lifecycle(message string, err error) *Error {
	return &Error{Code: CodeLifecycle, Message: message, Err: err}
}

// Configurationf creates a configuration error with a formatted message.
func Configurationf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// WithStage attaches a stage name and returns the error for chaining.
func (e *Error) WithStage(stage string) *Error {
	e.Stage = stage
	return e
}

// WithDocument attaches a document identifier and returns the error for chaining.
func (e *Error) WithDocument(id string) *Error {
	e.DocumentID = id
	return e
}

// WithSentence attaches a sentence identifier and returns the error for chaining.
func (e *Error) WithSentence(id string) *Error {
	e.SentenceID = id
	return e
}

// hasCode reports whether err is or wraps an *Error with the given code.
func hasCode(err error, code string) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return hasCode(err, CodeConfiguration)
}

// IsConsistency checks if an error is an engine consistency error.
func IsConsistency(err error) bool {
	return hasCode(err, CodeConsistency)
}

// IsAnnotation checks if an error is a recoverable annotation error.
func IsAnnotation(err error) bool {
	return hasCode(err, CodeAnnotation)
}

// IsLifecycle checks if an error is a resource lifecycle error.
func IsLifecycle(err error) bool {
	return hasCode(err, CodeLifecycle)
}
