package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetAndContains(t *testing.T) {
	s := NewSet(Tokenize, POS)
	assert.True(t, s.Contains(Tokenize))
	assert.True(t, s.Contains(POS))
	assert.False(t, s.Contains(Parse))
}

func TestUnionDoesNotMutate(t *testing.T) {
	a := NewSet(Tokenize)
	b := NewSet(POS)
	u := a.Union(b)

	assert.True(t, u.Contains(Tokenize))
	assert.True(t, u.Contains(POS))
	assert.False(t, a.Contains(POS))
	assert.False(t, b.Contains(Tokenize))
}

func TestContainsAll(t *testing.T) {
	have := NewSet(Tokenize, TokenizeWithDictA, POS)
	assert.True(t, have.ContainsAll(NewSet(Tokenize, POS)))
	assert.True(t, have.ContainsAll(NewSet()))
	assert.False(t, have.ContainsAll(NewSet(Parse)))
}

func TestMissingIsSorted(t *testing.T) {
	have := NewSet(Tokenize)
	missing := have.Missing(NewSet(POS, Parse, TokenizeWithDictB))
	assert.Equal(t, []Capability{POS, Parse, TokenizeWithDictB}, missing)
}

func TestMissingEmptyWhenSatisfied(t *testing.T) {
	have := NewSet(Tokenize, POS)
	assert.Empty(t, have.Missing(NewSet(Tokenize)))
}

func TestStringIsDeterministic(t *testing.T) {
	s := NewSet(Parse, Tokenize, POS)
	assert.Equal(t, "POS Parse Tokenize", s.String())
	assert.Equal(t, "", NewSet().String())
}
