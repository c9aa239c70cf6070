// Package postag provides a lexicon-based part-of-speech tagging stage. It
// re-tags the tokens layer, adding pos attributes without reordering or
// renumbering tokens.
package postag

import (
	"context"
	"strings"
	"unicode"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/document"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// DefaultTag is assigned to tokens absent from the lexicon.
const DefaultTag = "NN"

// Stage assigns part-of-speech tags from a word lexicon.
type Stage struct {
	name       string
	lexicon    map[string]string
	defaultTag string
}

// New creates a tagging stage. The lexicon maps lowercased surface forms to
// tags; tokens not found fall back to DefaultTag (digits to CD, punctuation
// to SYM).
func New(lexicon map[string]string) *Stage {
	lower := make(map[string]string, len(lexicon))
	for w, t := range lexicon {
		lower[strings.ToLower(w)] = t
	}
	return &Stage{
		name:       "postag",
		lexicon:    lower,
		defaultTag: DefaultTag,
	}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return s.name }

// Requires implements pipeline.Stage.
func (s *Stage) Requires() capability.Set {
	return capability.NewSet(capability.Tokenize)
}

// Satisfies implements pipeline.Stage.
func (s *Stage) Satisfies() capability.Set {
	return capability.NewSet(capability.POS)
}

// NewEngine implements pipeline.Stage. The tagger reads the lexicon map but
// never writes it; each worker still gets its own instance.
func (s *Stage) NewEngine() (any, error) {
	return &tagger{lexicon: s.lexicon, defaultTag: s.defaultTag}, nil
}

// Annotate adds pos attributes to every token of the tokens layer.
func (s *Stage) Annotate(ctx context.Context, sentence *document.Sentence, eng any) (*document.Sentence, error) {
	tg, ok := eng.(*tagger)
	if !ok {
		return nil, apperrors.Lifecycle("postag stage received a foreign engine instance", nil).WithStage(s.name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layer := sentence.Layer(document.TokensLayer)
	if layer == nil {
		return nil, apperrors.Consistency("sentence has no tokens layer", apperrors.ErrMissingLayer).
			WithStage(s.name).WithSentence(sentence.ID)
	}

	for _, node := range layer.Nodes {
		surf, _ := node.Attr(document.AttrSurf)
		node.SetAttr(document.AttrPOS, tg.tag(surf))
	}
	return sentence, nil
}

type tagger struct {
	lexicon    map[string]string
	defaultTag string
}

func (t *tagger) tag(surf string) string {
	if tag, ok := t.lexicon[strings.ToLower(surf)]; ok {
		return tag
	}
	switch classify(surf) {
	case classDigit:
		return "CD"
	case classPunct:
		return "SYM"
	default:
		return t.defaultTag
	}
}

type surfClass int

const (
	classWord surfClass = iota
	classDigit
	classPunct
)

func classify(surf string) surfClass {
	digits, letters := 0, 0
	for _, r := range surf {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	switch {
	case digits > 0 && letters == 0:
		return classDigit
	case digits == 0 && letters == 0:
		return classPunct
	default:
		return classWord
	}
}
