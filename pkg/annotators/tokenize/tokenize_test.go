package tokenize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/document"
)

func annotate(t *testing.T, stage *Stage, sentence *document.Sentence) *document.Sentence {
	t.Helper()
	eng, err := stage.NewEngine()
	require.NoError(t, err)
	out, err := stage.Annotate(context.Background(), sentence, eng)
	require.NoError(t, err)
	return out
}

func surfaces(layer *document.Layer) []string {
	out := make([]string, len(layer.Nodes))
	for i, n := range layer.Nodes {
		out[i], _ = n.Attr(document.AttrSurf)
	}
	return out
}

func TestTokenizeSegmentsAndNumbersTokens(t *testing.T) {
	s := &document.Sentence{ID: "s1", Text: "The cat sat.", Begin: 0, End: 12}
	out := annotate(t, New(), s)

	layer := out.Layer(document.TokensLayer)
	require.NotNil(t, layer)
	assert.Equal(t, []string{"The", "cat", "sat", "."}, surfaces(layer))
	assert.Equal(t, []string{"s1_tok0", "s1_tok1", "s1_tok2", "s1_tok3"}, out.TokenIDs())
}

func TestTokenizeOffsetsAreDocumentRelative(t *testing.T) {
	s := &document.Sentence{ID: "s2", Text: "Go now!", Begin: 13, End: 20}
	out := annotate(t, New(), s)

	layer := out.Layer(document.TokensLayer)
	require.Len(t, layer.Nodes, 3)

	begin, _ := layer.Nodes[0].Attr(document.AttrBegin)
	end, _ := layer.Nodes[0].Attr(document.AttrEnd)
	assert.Equal(t, "13", begin)
	assert.Equal(t, "15", end)

	begin, _ = layer.Nodes[2].Attr(document.AttrBegin)
	end, _ = layer.Nodes[2].Attr(document.AttrEnd)
	assert.Equal(t, "19", begin)
	assert.Equal(t, "20", end)
}

func TestTokenizeKeepsWordInternalPunctuation(t *testing.T) {
	s := &document.Sentence{ID: "s1", Text: "it's a well-known fact"}
	out := annotate(t, New(), s)
	assert.Equal(t, []string{"it's", "a", "well-known", "fact"},
		surfaces(out.Layer(document.TokensLayer)))
}

func TestTokenizeEmptySentence(t *testing.T) {
	s := &document.Sentence{ID: "s1", Text: ""}
	out := annotate(t, New(), s)

	layer := out.Layer(document.TokensLayer)
	require.NotNil(t, layer)
	assert.Empty(t, layer.Nodes)
}

func TestTokenizeRerunReplacesLayer(t *testing.T) {
	s := &document.Sentence{ID: "s1", Text: "one two"}
	out := annotate(t, New(), s)
	out = annotate(t, New(), out)

	count := 0
	for _, l := range out.Layers {
		if l.Tag == document.TokensLayer {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"s1_tok0", "s1_tok1"}, out.TokenIDs())
}

func TestTokenizeCapabilities(t *testing.T) {
	plain := New()
	assert.Equal(t, "tokenize", plain.Name())
	assert.Empty(t, plain.Requires())
	assert.True(t, plain.Satisfies().Contains(capability.Tokenize))

	dict := NewWithDict(capability.TokenizeWithDictA, NewDict(nil))
	assert.Equal(t, "tokenize-dict-a", dict.Name())
	assert.True(t, dict.Satisfies().Contains(capability.Tokenize))
	assert.True(t, dict.Satisfies().Contains(capability.TokenizeWithDictA))
}

func TestDictMergesGreedyLongestMatch(t *testing.T) {
	dict := NewDict([]string{"New York", "New York City", "ice cream"})
	stage := NewWithDict(capability.TokenizeWithDictB, dict)

	s := &document.Sentence{ID: "s1", Text: "I love New York City ice cream"}
	out := annotate(t, stage, s)

	assert.Equal(t, []string{"I", "love", "New York City", "ice cream"},
		surfaces(out.Layer(document.TokensLayer)))
}

func TestDictMergedTokenSpansWholePhrase(t *testing.T) {
	dict := NewDict([]string{"New York"})
	stage := NewWithDict(capability.TokenizeWithDictA, dict)

	s := &document.Sentence{ID: "s1", Text: "in New York today", Begin: 0}
	out := annotate(t, stage, s)

	layer := out.Layer(document.TokensLayer)
	require.Len(t, layer.Nodes, 3)
	begin, _ := layer.Nodes[1].Attr(document.AttrBegin)
	end, _ := layer.Nodes[1].Attr(document.AttrEnd)
	assert.Equal(t, "3", begin)
	assert.Equal(t, "11", end)
}

func TestDictMatchingIsCaseInsensitiveButPreservesCase(t *testing.T) {
	dict := NewDict([]string{"new york"})
	stage := NewWithDict(capability.TokenizeWithDictC, dict)

	s := &document.Sentence{ID: "s1", Text: "New York wins"}
	out := annotate(t, stage, s)
	assert.Equal(t, []string{"New York", "wins"},
		surfaces(out.Layer(document.TokensLayer)))
}

func TestDictIgnoresSingleWordEntries(t *testing.T) {
	dict := NewDict([]string{"cat", "big cat"})
	assert.Equal(t, 1, dict.Len())
}
