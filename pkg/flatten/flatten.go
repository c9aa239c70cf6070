// Package flatten converts a labeled parse tree into the flat node/span
// representation of the document model. Leaves are linked to pre-existing
// token identifiers in strict left-to-right order; spans are allocated
// children-before-parents, so references are acyclic by construction.
package flatten

import (
	"fmt"
	"strings"

	"github.com/wehubfusion/Daedalus/pkg/document"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/tree"
)

// WrapperLabel is the label of an ignorable top-level root wrapper. When the
// tree's root carries this label (or no label), its direct children become
// the roots of the per-sentence forest, supporting multiple top-level
// analyses per sentence.
const WrapperLabel = "TOP"

// Result is the flat representation of one flattening pass.
type Result struct {
	// Spans are the allocated span nodes, in allocation order
	// (children always precede parents).
	Spans []*document.Node
	// Roots are the identifiers of the top-level spans (or tokens) of the
	// per-sentence forest.
	Roots []string
}

// RootList returns the space-joined root identifiers for the layer's
// root-list attribute.
func (r *Result) RootList() string {
	return strings.Join(r.Roots, " ")
}

// Flatten converts the tree into span nodes, consuming tokenIDs left to
// right for the leaves and allocating span identifiers via alloc.
//
// A nil tree with zero tokens yields zero spans and an empty root list. A
// single-node tree over a non-empty token sequence is the signature of a
// parse failure and is reported as an annotation error. A leaf count that
// does not match the token count is an engine consistency error.
func Flatten(t *tree.Node, tokenIDs []string, alloc *document.Allocator) (*Result, error) {
	if t == nil {
		if len(tokenIDs) == 0 {
			return &Result{}, nil
		}
		return nil, apperrors.Annotation("engine produced no result for non-empty input", apperrors.ErrDegenerateParse)
	}
	if len(tokenIDs) > 0 && singleNode(t) {
		return nil, apperrors.Annotation("engine produced a single node for non-empty input", apperrors.ErrDegenerateParse)
	}
	if got := t.LeafCount(); got != len(tokenIDs) {
		return nil, apperrors.Consistency(
			fmt.Sprintf("tree has %d leaves for %d tokens", got, len(tokenIDs)),
			apperrors.ErrLeafTokenMismatch)
	}

	f := &flattener{tokenIDs: tokenIDs, alloc: alloc}
	result := &Result{}
	if !t.IsLeaf() && isWrapper(t.Label) {
		for _, c := range t.Children {
			result.Roots = append(result.Roots, f.resolve(c))
		}
	} else {
		result.Roots = append(result.Roots, f.resolve(t))
	}
	result.Spans = f.spans
	return result, nil
}

func isWrapper(label string) bool {
	return label == WrapperLabel || label == ""
}

// singleNode reports whether the whole tree is one node: a bare leaf or an
// internal node without children.
func singleNode(t *tree.Node) bool {
	return len(t.Children) == 0
}

type flattener struct {
	tokenIDs []string
	next     int
	alloc    *document.Allocator
	spans    []*document.Node
}

// resolve returns the identifier the node flattens to. Leaves and
// preterminals (an internal node whose single child is a leaf) consume the
// next token identifier; every other internal node becomes a span.
func (f *flattener) resolve(n *tree.Node) string {
	if n.IsLeaf() || (len(n.Children) == 1 && n.Children[0].IsLeaf()) {
		id := f.tokenIDs[f.next]
		f.next++
		return id
	}

	childIDs := make([]string, len(n.Children))
	for i, c := range n.Children {
		childIDs[i] = f.resolve(c)
	}

	span := &document.Node{
		ID: f.alloc.Next(),
		Attrs: map[string]string{
			document.AttrSymbol:   n.Label,
			document.AttrChildren: strings.Join(childIDs, " "),
		},
	}
	f.spans = append(f.spans, span)
	return span.ID
}
