// Package document provides the attribute-bearing node tree representing one
// document and its sentences. Stages read and extend the tree without
// corrupting data written by earlier stages: mutation happens on cloned
// sentences that are swapped in only when a stage succeeds.
package document

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Well-known layer tags.
const (
	TokensLayer = "tokens"
	ParseLayer  = "parse"
)

// Well-known attribute names. Attribute values are always strings; absent
// optional attributes are omitted rather than empty.
const (
	AttrSurf     = "surf"
	AttrPOS      = "pos"
	AttrLemma    = "lemma"
	AttrBegin    = "begin"
	AttrEnd      = "end"
	AttrSymbol   = "symbol"
	AttrChildren = "children"
	AttrRoot     = "root"
)

// Document is the root node. It exclusively owns all descendant nodes; no
// node is shared across documents.
type Document struct {
	// ID uniquely identifies the document.
	ID string
	// Text is the full, NFC-normalized input text.
	Text string
	// Sentences are the ordered sentence nodes.
	Sentences []*Sentence
}

// Sentence has a stable identifier assigned at document creation, a
// character-level text span, and an ordered sequence of annotation layers.
type Sentence struct {
	// ID is the stable sentence identifier, never reassigned.
	ID string
	// Text is the sentence surface text.
	Text string
	// Begin is the sentence's start offset in the document text.
	Begin int
	// End is the sentence's end offset in the document text.
	End int
	// Layers are the ordered child annotation layers.
	Layers []*Layer
}

// Layer is one annotation layer of a sentence (tokens, parses, other derived
// layers). A stage may add a new layer or replace an existing layer with the
// same tag; replacement leaves sibling layers untouched.
type Layer struct {
	// Tag identifies the layer kind, e.g. "tokens" or "parse".
	Tag string
	// Attrs are layer-level attributes, e.g. the span forest roots.
	Attrs map[string]string
	// Nodes are the ordered annotation nodes of the layer.
	Nodes []*Node
}

// Node is a single annotation node: a token or a derived span. Child
// relations are encoded as ordered identifier lists in attributes, never
// nested inline.
type Node struct {
	// ID is the node identifier, e.g. "s1_tok0" or "s1_x0".
	ID string
	// Attrs maps attribute names to string values.
	Attrs map[string]string
}

// NewDocument creates a document with a fresh identifier from raw text. The
// text is NFC-normalized and split into sentences; sentence identifiers are
// assigned once, in order, and never reassigned.
func NewDocument(text string) *Document {
	text = norm.NFC.String(text)
	doc := &Document{
		ID:   uuid.NewString(),
		Text: text,
	}
	for i, sp := range splitSentences(text) {
		doc.Sentences = append(doc.Sentences, &Sentence{
			ID:    fmt.Sprintf("s%d", i+1),
			Text:  text[sp.begin:sp.end],
			Begin: sp.begin,
			End:   sp.end,
		})
	}
	return doc
}

// NewDocumentFromSentences creates a document from pre-split sentence texts.
// Offsets are assigned as if the sentences were joined by single spaces.
func NewDocumentFromSentences(texts []string) *Document {
	doc := &Document{ID: uuid.NewString()}
	offset := 0
	for i, t := range texts {
		t = norm.NFC.String(t)
		doc.Sentences = append(doc.Sentences, &Sentence{
			ID:    fmt.Sprintf("s%d", i+1),
			Text:  t,
			Begin: offset,
			End:   offset + len(t),
		})
		if i > 0 {
			doc.Text += " "
		}
		doc.Text += t
		offset += len(t) + 1
	}
	return doc
}

// Layer returns the layer with the given tag, or nil if absent.
func (s *Sentence) Layer(tag string) *Layer {
	for _, l := range s.Layers {
		if l.Tag == tag {
			return l
		}
	}
	return nil
}

// ReplaceLayer replaces the layer with the same tag, preserving the position
// of sibling layers. If no layer with the tag exists, the layer is appended.
func (s *Sentence) ReplaceLayer(layer *Layer) {
	for i, l := range s.Layers {
		if l.Tag == layer.Tag {
			s.Layers[i] = layer
			return
		}
	}
	s.Layers = append(s.Layers, layer)
}

// RemoveLayer removes the layer with the given tag, if present.
func (s *Sentence) RemoveLayer(tag string) {
	for i, l := range s.Layers {
		if l.Tag == tag {
			s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the sentence. Stages operate on clones so a
// failed stage never leaves a sentence partially mutated.
func (s *Sentence) Clone() *Sentence {
	clone := &Sentence{
		ID:    s.ID,
		Text:  s.Text,
		Begin: s.Begin,
		End:   s.End,
	}
	if s.Layers != nil {
		clone.Layers = make([]*Layer, len(s.Layers))
		for i, l := range s.Layers {
			clone.Layers[i] = l.Clone()
		}
	}
	return clone
}

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	clone := &Layer{
		Tag:   l.Tag,
		Attrs: cloneAttrs(l.Attrs),
	}
	if l.Nodes != nil {
		clone.Nodes = make([]*Node, len(l.Nodes))
		for i, n := range l.Nodes {
			clone.Nodes[i] = n.Clone()
		}
	}
	return clone
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	return &Node{ID: n.ID, Attrs: cloneAttrs(n.Attrs)}
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	result := make(map[string]string, len(attrs))
	for k, v := range attrs {
		result[k] = v
	}
	return result
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// SetAttr adds or overrides an attribute.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// SetAttr adds or overrides a layer-level attribute.
func (l *Layer) SetAttr(name, value string) {
	if l.Attrs == nil {
		l.Attrs = make(map[string]string)
	}
	l.Attrs[name] = value
}

// Attr returns the layer-level attribute value and whether it is present.
func (l *Layer) Attr(name string) (string, bool) {
	v, ok := l.Attrs[name]
	return v, ok
}

// NewToken creates a token node with the given identifier and surface form.
func NewToken(id, surf string) *Node {
	return &Node{ID: id, Attrs: map[string]string{AttrSurf: surf}}
}

// TokenIDs returns the ordered token identifiers of the sentence's tokens
// layer, or nil if the sentence has no tokens layer.
func (s *Sentence) TokenIDs() []string {
	layer := s.Layer(TokensLayer)
	if layer == nil {
		return nil
	}
	ids := make([]string, len(layer.Nodes))
	for i, n := range layer.Nodes {
		ids[i] = n.ID
	}
	return ids
}
