// Package tokenize provides the tokenization stages: a unicode rune-class
// segmenter and dictionary-variant tokenizers that merge multi-word entries
// into single tokens by greedy longest match.
package tokenize

import (
	"context"
	"strconv"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/document"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Stage segments sentence text into the tokens layer. Token identifiers are
// assigned once, in left-to-right order.
type Stage struct {
	name      string
	satisfies capability.Set
	dict      *Dict
}

// New creates the plain unicode tokenization stage.
func New() *Stage {
	return &Stage{
		name:      "tokenize",
		satisfies: capability.NewSet(capability.Tokenize),
	}
}

// NewWithDict creates a dictionary-variant tokenization stage. variant is
// the dictionary capability the stage satisfies in addition to Tokenize,
// e.g. capability.TokenizeWithDictA.
func NewWithDict(variant capability.Capability, dict *Dict) *Stage {
	suffix := strings.ToLower(strings.TrimPrefix(string(variant), "TokenizeWithDict"))
	return &Stage{
		name:      "tokenize-dict-" + suffix,
		satisfies: capability.NewSet(capability.Tokenize, variant),
		dict:      dict,
	}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return s.name }

// Requires implements pipeline.Stage. Tokenization has no prerequisites.
func (s *Stage) Requires() capability.Set { return capability.NewSet() }

// Satisfies implements pipeline.Stage.
func (s *Stage) Satisfies() capability.Set { return s.satisfies }

// NewEngine implements pipeline.Stage.
func (s *Stage) NewEngine() (any, error) {
	return &segmenter{dict: s.dict}, nil
}

// Annotate writes the tokens layer. Re-running replaces the layer while
// leaving sibling layers untouched.
func (s *Stage) Annotate(ctx context.Context, sentence *document.Sentence, eng any) (*document.Sentence, error) {
	seg, ok := eng.(*segmenter)
	if !ok {
		return nil, apperrors.Lifecycle("tokenize stage received a foreign engine instance", nil).WithStage(s.name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alloc := document.NewAllocator(sentence.ID, "tok")
	layer := &document.Layer{Tag: document.TokensLayer}
	for _, t := range seg.segment(sentence.Text) {
		node := document.NewToken(alloc.Next(), t.surf)
		node.SetAttr(document.AttrBegin, strconv.Itoa(sentence.Begin+t.begin))
		node.SetAttr(document.AttrEnd, strconv.Itoa(sentence.Begin+t.end))
		layer.Nodes = append(layer.Nodes, node)
	}
	sentence.ReplaceLayer(layer)
	return sentence, nil
}

// segmenter is the stage's local engine instance. It holds no shared state;
// one is created per worker regardless.
type segmenter struct {
	dict *Dict
}

// token is a segmented surface form with offsets relative to sentence text.
type token struct {
	surf  string
	begin int
	end   int
}

// segment splits text on rune classes: runs of letters, digits, hyphens and
// apostrophes form word tokens; any other non-space rune is a token of its
// own.
func (g *segmenter) segment(text string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{surf: text[start:end], begin: start, end: end})
			start = -1
		}
	}
	for i, r := range text {
		switch {
		case isSpace(r):
			flush(i)
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		default:
			flush(i)
			end := i + runeLen(r)
			toks = append(toks, token{surf: text[i:end], begin: i, end: end})
		}
	}
	flush(len(text))

	if g.dict != nil {
		toks = g.dict.merge(toks)
	}
	return toks
}
