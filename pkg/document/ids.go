package document

import "strconv"

// Allocator derives deterministic, collision-free identifiers for nodes
// created during a single sentence's annotation. It is scoped per
// (sentence identifier, node kind, flattening pass) and must be discarded
// after one stage's processing of one sentence.
type Allocator struct {
	prefix string
	n      int
}

// NewAllocator creates an allocator for the given sentence and node kind.
// Identifiers take the form <sentenceID>_<kind><counter> with the counter
// starting at 0.
func NewAllocator(sentenceID, kind string) *Allocator {
	return &Allocator{prefix: sentenceID + "_" + kind}
}

// Next returns the next identifier in the scope. No two calls within the
// same scope ever return the same identifier.
func (a *Allocator) Next() string {
	id := a.prefix + strconv.Itoa(a.n)
	a.n++
	return id
}

// Count returns how many identifiers have been allocated.
func (a *Allocator) Count() int {
	return a.n
}
