// Package capability models the symbolic annotation capabilities stages
// require as input and produce as output. Capabilities carry no payload;
// they exist only to order stages within a pipeline.
package capability

import (
	"sort"
	"strings"
)

// Capability is an opaque symbolic tag denoting an annotation type.
type Capability string

// Well-known capabilities. The set is open; stages may declare their own.
const (
	Tokenize          Capability = "Tokenize"
	TokenizeWithDictA Capability = "TokenizeWithDictA"
	TokenizeWithDictB Capability = "TokenizeWithDictB"
	TokenizeWithDictC Capability = "TokenizeWithDictC"
	POS               Capability = "POS"
	Parse             Capability = "Parse"
)

// Set is an unordered collection of capabilities.
type Set map[Capability]struct{}

// NewSet creates a set containing the given capabilities.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether the set contains the capability.
func (s Set) Contains(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Add inserts the capabilities into the set.
func (s Set) Add(caps ...Capability) {
	for _, c := range caps {
		s[c] = struct{}{}
	}
}

// Union returns a new set containing the members of both sets.
func (s Set) Union(other Set) Set {
	result := make(Set, len(s)+len(other))
	for c := range s {
		result[c] = struct{}{}
	}
	for c := range other {
		result[c] = struct{}{}
	}
	return result
}

// ContainsAll reports whether every member of required is in the set.
func (s Set) ContainsAll(required Set) bool {
	for c := range required {
		if !s.Contains(c) {
			return false
		}
	}
	return true
}

// Missing returns the members of required absent from the set, sorted for
// deterministic error messages.
func (s Set) Missing(required Set) []Capability {
	var missing []Capability
	for c := range required {
		if !s.Contains(c) {
			missing = append(missing, c)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// Slice returns the members of the set in sorted order.
func (s Set) Slice() []Capability {
	caps := make([]Capability, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// String returns the sorted, space-joined members of the set.
func (s Set) String() string {
	caps := s.Slice()
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}
