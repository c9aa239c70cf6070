package pipeline

import (
	"github.com/wehubfusion/Daedalus/pkg/document"
)

// SentenceError records a per-sentence annotation failure. Per-sentence
// errors are collected and attached to the document's result rather than
// thrown out of the dispatcher.
type SentenceError struct {
	// DocumentID identifies the document.
	DocumentID string
	// SentenceID identifies the failed sentence.
	SentenceID string
	// Stage is the name of the stage that failed.
	Stage string
	// Err is the underlying annotation error.
	Err error
}

// Error implements the error interface.
func (e SentenceError) Error() string {
	return "stage " + e.Stage + " failed on sentence " + e.SentenceID +
		" of document " + e.DocumentID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e SentenceError) Unwrap() error {
	return e.Err
}

// Result is the outcome of running a pipeline over one document.
type Result struct {
	// Document is the annotated document, in original sentence order.
	Document *document.Document
	// SentenceErrors are the collected per-sentence failures across all
	// stages, ordered by stage then sentence position.
	SentenceErrors []SentenceError
}

// Failed reports whether any stage failed on the given sentence.
func (r *Result) Failed(sentenceID string) bool {
	for _, e := range r.SentenceErrors {
		if e.SentenceID == sentenceID {
			return true
		}
	}
	return false
}
