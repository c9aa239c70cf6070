// Package pipeline provides the annotation pipeline runtime: capability
// validation of the ordered stage list, and a parallel dispatcher that fans
// a document's sentences out to workers, each exclusively bound to a private
// engine instance.
package pipeline

import (
	"context"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/document"
)

// Stage is one named pipeline unit. It declares the capabilities it requires
// as input and produces as output, owns a factory for private local engine
// instances, and exposes a per-sentence transform.
type Stage interface {
	// Name returns the stage name, used in errors and logs.
	Name() string

	// Requires returns the capabilities that must be satisfied by stages
	// scheduled before this one.
	Requires() capability.Set

	// Satisfies returns the capabilities this stage produces.
	Satisfies() capability.Set

	// NewEngine creates a private local engine instance, possibly wrapping
	// an expensive, non-thread-safe resource. The dispatcher calls it once
	// per worker; no two workers ever share an instance.
	NewEngine() (any, error)

	// Annotate transforms one sentence using the worker's engine instance.
	// The sentence passed in is a private clone owned by the caller for the
	// duration of the call; side effects must be confined to it and to the
	// engine instance. Annotate must not decide to skip or retry; failure
	// handling is a pipeline-level policy.
	Annotate(ctx context.Context, sentence *document.Sentence, eng any) (*document.Sentence, error)
}

// Initer is an optional stage hook for one-time eager resource acquisition
// (model loading, process warm-up), run before any sentence is processed.
type Initer interface {
	Init(ctx context.Context) error
}

// Closer is an optional stage hook for resource release, guaranteed to run
// once after the stage finishes processing all documents, including when
// processing failed partway.
type Closer interface {
	Close() error
}
