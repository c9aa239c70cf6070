// Package engine defines the boundary with external analysis engines. An
// engine takes a sequence of surface tokens (and optionally a parallel
// sequence of part-of-speech tags) and returns a labeled constituency tree
// or a failure signal.
//
// Engine instances are not assumed to be safe for concurrent use. The
// pipeline dispatcher creates one instance per worker via a Factory and
// never shares an instance between workers.
package engine

import (
	"context"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/tree"
)

// Engine is the narrow capability interface implemented by all engine
// variants, in-process or external.
type Engine interface {
	// Annotate analyzes one sentence. tokens are the surface forms; pos, if
	// non-nil, is a parallel sequence of part-of-speech tags.
	Annotate(ctx context.Context, tokens []string, pos []string) (*tree.Node, error)
}

// Factory creates a private engine instance. The dispatcher calls the
// factory once per worker.
type Factory func() (Engine, error)

// Closer is implemented by engines owning resources that must be released
// deterministically (external processes, model handles).
type Closer interface {
	Close() error
}

// Func adapts a plain function to the Engine interface.
type Func func(ctx context.Context, tokens []string, pos []string) (*tree.Node, error)

// Annotate implements Engine.
func (f Func) Annotate(ctx context.Context, tokens []string, pos []string) (*tree.Node, error) {
	return f(ctx, tokens, pos)
}

// encodeRequest builds the single request line of the line-oriented engine
// protocol: tokens joined by spaces, or token/POS pairs when tags are given.
// The line must frame exactly len(tokens) fields or the engine's leaf count
// will not match the token count, so separator characters inside a surface
// form (spaces in dictionary-merged tokens, "/" in pair mode) are replaced
// with "_".
func encodeRequest(tokens []string, pos []string) string {
	parts := make([]string, len(tokens))
	if len(pos) != len(tokens) {
		for i, t := range tokens {
			parts[i] = sanitizeToken(t, false)
		}
		return strings.Join(parts, " ")
	}
	for i, t := range tokens {
		parts[i] = sanitizeToken(t, true) + "/" + pos[i]
	}
	return strings.Join(parts, " ")
}

func sanitizeToken(t string, pair bool) string {
	s := strings.Join(strings.Fields(t), "_")
	if pair {
		s = strings.ReplaceAll(s, "/", "_")
	}
	if s == "" {
		return "_"
	}
	return s
}
