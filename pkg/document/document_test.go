package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentSplitsSentences(t *testing.T) {
	doc := NewDocument("The cat sat. The dog barked!")

	require.NotEmpty(t, doc.ID)
	require.Len(t, doc.Sentences, 2)

	s1, s2 := doc.Sentences[0], doc.Sentences[1]
	assert.Equal(t, "s1", s1.ID)
	assert.Equal(t, "The cat sat.", s1.Text)
	assert.Equal(t, 0, s1.Begin)
	assert.Equal(t, 12, s1.End)

	assert.Equal(t, "s2", s2.ID)
	assert.Equal(t, "The dog barked!", s2.Text)
	assert.Equal(t, 13, s2.Begin)
	assert.Equal(t, 28, s2.End)

	// Offsets index into the document text.
	assert.Equal(t, s1.Text, doc.Text[s1.Begin:s1.End])
	assert.Equal(t, s2.Text, doc.Text[s2.Begin:s2.End])
}

func TestNewDocumentTerminalPunctuationRun(t *testing.T) {
	doc := NewDocument("Really?! Yes.")
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, "Really?!", doc.Sentences[0].Text)
	assert.Equal(t, "Yes.", doc.Sentences[1].Text)
}

func TestNewDocumentNewlineBoundary(t *testing.T) {
	doc := NewDocument("first line\nsecond line")
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, "first line", doc.Sentences[0].Text)
	assert.Equal(t, "second line", doc.Sentences[1].Text)
}

func TestNewDocumentNormalizesNFC(t *testing.T) {
	// Decomposed e + combining acute normalizes to the composed form.
	doc := NewDocument("café.")
	assert.Equal(t, "café.", doc.Text)
	require.Len(t, doc.Sentences, 1)
	assert.Equal(t, "café.", doc.Sentences[0].Text)
}

func TestNewDocumentEmptyText(t *testing.T) {
	doc := NewDocument("")
	assert.Empty(t, doc.Sentences)
	assert.NotEmpty(t, doc.ID)
}

func TestNewDocumentFromSentences(t *testing.T) {
	doc := NewDocumentFromSentences([]string{"One two.", "Three."})
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, "One two. Three.", doc.Text)
	assert.Equal(t, "s1", doc.Sentences[0].ID)
	assert.Equal(t, "s2", doc.Sentences[1].ID)
	assert.Equal(t, doc.Sentences[0].Text, doc.Text[doc.Sentences[0].Begin:doc.Sentences[0].End])
	assert.Equal(t, doc.Sentences[1].Text, doc.Text[doc.Sentences[1].Begin:doc.Sentences[1].End])
}

func TestReplaceLayerPreservesSiblingPositions(t *testing.T) {
	s := &Sentence{ID: "s1"}
	s.ReplaceLayer(&Layer{Tag: TokensLayer, Nodes: []*Node{NewToken("s1_tok0", "old")}})
	s.ReplaceLayer(&Layer{Tag: ParseLayer})
	s.ReplaceLayer(&Layer{Tag: "custom"})

	replacement := &Layer{Tag: ParseLayer, Nodes: []*Node{{ID: "s1_x0"}}}
	s.ReplaceLayer(replacement)

	require.Len(t, s.Layers, 3)
	assert.Equal(t, TokensLayer, s.Layers[0].Tag)
	assert.Same(t, replacement, s.Layers[1])
	assert.Equal(t, "custom", s.Layers[2].Tag)
}

func TestRemoveLayer(t *testing.T) {
	s := &Sentence{ID: "s1", Layers: []*Layer{{Tag: TokensLayer}, {Tag: ParseLayer}}}
	s.RemoveLayer(ParseLayer)
	require.Len(t, s.Layers, 1)
	assert.Equal(t, TokensLayer, s.Layers[0].Tag)

	// Removing an absent layer is a no-op.
	s.RemoveLayer("nope")
	assert.Len(t, s.Layers, 1)
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Sentence{
		ID:   "s1",
		Text: "Hi there",
		End:  8,
		Layers: []*Layer{{
			Tag:   TokensLayer,
			Attrs: map[string]string{"source": "test"},
			Nodes: []*Node{NewToken("s1_tok0", "Hi")},
		}},
	}
	clone := orig.Clone()

	clone.Layers[0].Nodes[0].SetAttr(AttrSurf, "changed")
	clone.Layers[0].SetAttr("source", "changed")
	clone.Layers = append(clone.Layers, &Layer{Tag: ParseLayer})

	surf, _ := orig.Layers[0].Nodes[0].Attr(AttrSurf)
	assert.Equal(t, "Hi", surf)
	assert.Equal(t, "test", orig.Layers[0].Attrs["source"])
	assert.Len(t, orig.Layers, 1)
}

func TestTokenIDs(t *testing.T) {
	s := &Sentence{ID: "s1"}
	assert.Nil(t, s.TokenIDs())

	s.ReplaceLayer(&Layer{Tag: TokensLayer, Nodes: []*Node{
		NewToken("s1_tok0", "a"),
		NewToken("s1_tok1", "b"),
	}})
	assert.Equal(t, []string{"s1_tok0", "s1_tok1"}, s.TokenIDs())
}

func TestAllocatorSequence(t *testing.T) {
	alloc := NewAllocator("s2", "x")
	assert.Equal(t, "s2_x0", alloc.Next())
	assert.Equal(t, "s2_x1", alloc.Next())
	assert.Equal(t, "s2_x2", alloc.Next())
	assert.Equal(t, 3, alloc.Count())
}

func TestAllocatorScopesAreIndependent(t *testing.T) {
	seen := map[string]bool{}
	for _, kind := range []string{"tok", "x"} {
		alloc := NewAllocator("s1", kind)
		for i := 0; i < 4; i++ {
			id := alloc.Next()
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}
