// Package tree models the labeled, arbitrary-arity trees produced by
// external analysis engines, and decodes the Penn-style bracketed text form
// engines emit, e.g. "(S (NP (DT The) (NN cat)) (VP sat))".
package tree

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Node is one node of a parse tree. Internal nodes carry a grammatical
// label; leaves carry a surface word and correspond 1:1, in left-to-right
// order, to the sentence's tokens.
type Node struct {
	// Label is the grammatical category of an internal node.
	Label string
	// Word is the surface form of a leaf. A node is a leaf iff Word != "".
	Word string
	// Children are the ordered child nodes.
	Children []*Node
}

// NewLeaf creates a leaf node for a surface word.
func NewLeaf(word string) *Node {
	return &Node{Word: word}
}

// NewNode creates an internal node with the given label and children.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Word != ""
}

// Leaves returns the leaf words in left-to-right order.
func (n *Node) Leaves() []string {
	var leaves []string
	n.walkLeaves(func(leaf *Node) {
		leaves = append(leaves, leaf.Word)
	})
	return leaves
}

// LeafCount returns the number of leaves in the tree.
func (n *Node) LeafCount() int {
	count := 0
	n.walkLeaves(func(*Node) { count++ })
	return count
}

func (n *Node) walkLeaves(visit func(*Node)) {
	if n.IsLeaf() {
		visit(n)
		return
	}
	for _, c := range n.Children {
		c.walkLeaves(visit)
	}
}

// String re-encodes the tree in bracketed text form.
func (n *Node) String() string {
	if n.IsLeaf() {
		return n.Word
	}
	parts := make([]string, 0, len(n.Children)+1)
	parts = append(parts, n.Label)
	for _, c := range n.Children {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// bracketNode and bracketChild form the participle grammar for the bracketed
// text form. A node is "(" label child+ ")"; a child is a node or a word.
type bracketNode struct {
	Label    string          `parser:"'(' @Symbol"`
	Children []*bracketChild `parser:"@@+ ')'"`
}

type bracketChild struct {
	Node *bracketNode `parser:"  @@"`
	Word *string      `parser:"| @Symbol"`
}

var bracketLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Symbol", Pattern: `[^()\s]+`},
	{Name: "whitespace", Pattern: `\s+`},
})

var bracketParser = participle.MustBuild[bracketNode](
	participle.Lexer(bracketLexer),
)

// Parse decodes one tree from bracketed text. Malformed input is an engine
// consistency error.
func Parse(input string) (*Node, error) {
	parsed, err := bracketParser.ParseString("", input)
	if err != nil {
		return nil, apperrors.Consistency("malformed bracketed tree", err)
	}
	return fromBracket(parsed), nil
}

func fromBracket(b *bracketNode) *Node {
	n := &Node{Label: b.Label}
	for _, c := range b.Children {
		if c.Word != nil {
			n.Children = append(n.Children, &Node{Word: *c.Word})
		} else {
			n.Children = append(n.Children, fromBracket(c.Node))
		}
	}
	return n
}
