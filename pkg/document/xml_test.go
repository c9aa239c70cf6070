package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLSerialization(t *testing.T) {
	doc := &Document{
		ID:   "d1",
		Text: "Hi",
		Sentences: []*Sentence{{
			ID:    "s1",
			Text:  "Hi",
			Begin: 0,
			End:   2,
			Layers: []*Layer{{
				Tag:   TokensLayer,
				Nodes: []*Node{NewToken("s1_tok0", "Hi")},
			}},
		}},
	}

	got, err := doc.XML()
	require.NoError(t, err)

	want := `<document id="d1">
  <sentence id="s1" begin="0" end="2" text="Hi">
    <layer tag="tokens">
      <node id="s1_tok0" surf="Hi"></node>
    </layer>
  </sentence>
</document>`
	assert.Equal(t, want, got)
}

func TestXMLAttrOrderIsDeterministic(t *testing.T) {
	node := &Node{ID: "s1_x0", Attrs: map[string]string{
		"symbol":   "NP",
		"children": "s1_tok0 s1_tok1",
	}}
	doc := &Document{
		ID: "d1",
		Sentences: []*Sentence{{
			ID: "s1",
			Layers: []*Layer{{
				Tag:   ParseLayer,
				Attrs: map[string]string{"root": "s1_x0"},
				Nodes: []*Node{node},
			}},
		}},
	}

	first, err := doc.XML()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := doc.XML()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// Identifying attribute first, the rest sorted by name.
	assert.Contains(t, first, `<node id="s1_x0" children="s1_tok0 s1_tok1" symbol="NP">`)
	assert.Contains(t, first, `<layer tag="parse" root="s1_x0">`)
}

func TestXMLOmitsAbsentAttributes(t *testing.T) {
	doc := &Document{
		ID: "d1",
		Sentences: []*Sentence{{
			ID:     "s1",
			Layers: []*Layer{{Tag: TokensLayer, Nodes: []*Node{{ID: "s1_tok0"}}}},
		}},
	}
	got, err := doc.XML()
	require.NoError(t, err)
	assert.Contains(t, got, `<node id="s1_tok0"></node>`)
}

func TestXMLEscapesText(t *testing.T) {
	doc := &Document{
		ID:        "d1",
		Sentences: []*Sentence{{ID: "s1", Text: `a < b & "c"`}},
	}
	got, err := doc.XML()
	require.NoError(t, err)
	assert.NotContains(t, got, `text="a < b`)
	assert.Contains(t, got, "&lt;")
}
