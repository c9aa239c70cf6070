// Package parse provides the constituency parsing stage. The stage drives
// an engine variant (external process, script, or in-process) through the
// narrow engine interface and flattens the resulting tree into the parse
// layer.
package parse

import (
	"context"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/document"
	"github.com/wehubfusion/Daedalus/pkg/engine"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/flatten"
)

// DefaultSpanTag is the node-kind tag used for span identifiers.
const DefaultSpanTag = "x"

// Option configures a parse stage.
type Option func(*Stage)

// WithName overrides the stage name.
func WithName(name string) Option {
	return func(s *Stage) { s.name = name }
}

// WithSpanTag overrides the span identifier kind tag.
func WithSpanTag(tag string) Option {
	return func(s *Stage) { s.spanTag = tag }
}

// WithRequires overrides the required capability set. The default requires
// tokenization and part-of-speech tags.
func WithRequires(caps ...capability.Capability) Option {
	return func(s *Stage) { s.requires = capability.NewSet(caps...) }
}

// Stage parses sentences with a backing engine and writes the parse layer.
type Stage struct {
	name     string
	factory  engine.Factory
	spanTag  string
	requires capability.Set
}

// New creates a parse stage backed by engines from the factory.
func New(factory engine.Factory, opts ...Option) *Stage {
	s := &Stage{
		name:     "parse",
		factory:  factory,
		spanTag:  DefaultSpanTag,
		requires: capability.NewSet(capability.Tokenize, capability.POS),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return s.name }

// Requires implements pipeline.Stage.
func (s *Stage) Requires() capability.Set { return s.requires }

// Satisfies implements pipeline.Stage.
func (s *Stage) Satisfies() capability.Set {
	return capability.NewSet(capability.Parse)
}

// NewEngine implements pipeline.Stage.
func (s *Stage) NewEngine() (any, error) {
	return s.factory()
}

// Annotate parses the sentence's tokens and writes the flattened parse
// layer. An empty sentence yields an empty layer, not an error. A
// degenerate engine result is an annotation error: the sentence is left
// without the parse layer and the failure is reported per pipeline policy.
func (s *Stage) Annotate(ctx context.Context, sentence *document.Sentence, eng any) (*document.Sentence, error) {
	parser, ok := eng.(engine.Engine)
	if !ok {
		return nil, apperrors.Lifecycle("parse stage received a foreign engine instance", nil).WithStage(s.name)
	}

	layer := sentence.Layer(document.TokensLayer)
	if layer == nil {
		return nil, apperrors.Consistency("sentence has no tokens layer", apperrors.ErrMissingLayer).
			WithStage(s.name).WithSentence(sentence.ID)
	}

	tokens := make([]string, len(layer.Nodes))
	ids := make([]string, len(layer.Nodes))
	pos := make([]string, 0, len(layer.Nodes))
	for i, node := range layer.Nodes {
		surf, _ := node.Attr(document.AttrSurf)
		tokens[i] = surf
		ids[i] = node.ID
		if tag, ok := node.Attr(document.AttrPOS); ok {
			pos = append(pos, tag)
		}
	}
	// Pass tags along only when every token carries one.
	if len(pos) != len(tokens) {
		pos = nil
	}

	// Zero tokens produce zero spans and an empty root list; the engine is
	// not consulted.
	if len(tokens) == 0 {
		sentence.ReplaceLayer(&document.Layer{Tag: document.ParseLayer})
		return sentence, nil
	}

	result, err := parser.Annotate(ctx, tokens, pos)
	if err != nil {
		return nil, err
	}

	flat, err := flatten.Flatten(result, ids, document.NewAllocator(sentence.ID, s.spanTag))
	if err != nil {
		return nil, err
	}

	parseLayer := &document.Layer{Tag: document.ParseLayer, Nodes: flat.Spans}
	if roots := flat.RootList(); roots != "" {
		parseLayer.SetAttr(document.AttrRoot, roots)
	}
	sentence.ReplaceLayer(parseLayer)
	return sentence, nil
}
