package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wehubfusion/Daedalus/pkg/capability"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

func capStage(name string, requires, satisfies []capability.Capability) *mockStage {
	st := newMockStage(name)
	st.requires = capability.NewSet(requires...)
	st.satisfies = capability.NewSet(satisfies...)
	return st
}

func TestValidateAcceptsSatisfiedOrdering(t *testing.T) {
	stages := []Stage{
		capStage("tokenize", nil, []capability.Capability{capability.Tokenize}),
		capStage("postag", []capability.Capability{capability.Tokenize}, []capability.Capability{capability.POS}),
		capStage("parse", []capability.Capability{capability.Tokenize, capability.POS}, []capability.Capability{capability.Parse}),
	}
	assert.NoError(t, Validate(stages))
}

func TestValidateRejectsUnsatisfiedRequirement(t *testing.T) {
	stages := []Stage{
		capStage("postag", []capability.Capability{capability.Tokenize}, []capability.Capability{capability.POS}),
	}
	err := Validate(stages)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.ErrorIs(t, err, apperrors.ErrUnsatisfiedRequirement)
}

func TestValidateRejectsWrongOrder(t *testing.T) {
	// The satisfying stage comes after the requiring one; ordering is strict.
	stages := []Stage{
		capStage("postag", []capability.Capability{capability.Tokenize}, []capability.Capability{capability.POS}),
		capStage("tokenize", nil, []capability.Capability{capability.Tokenize}),
	}
	err := Validate(stages)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsatisfiedRequirement)
}

func TestValidateErrorNamesStageAndMissingCapabilities(t *testing.T) {
	stages := []Stage{
		capStage("tokenize", nil, []capability.Capability{capability.Tokenize}),
		capStage("parse", []capability.Capability{capability.Tokenize, capability.POS, capability.Parse}, nil),
	}
	err := Validate(stages)
	require.Error(t, err)

	var pe *apperrors.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "parse", pe.Stage)
	assert.Contains(t, pe.Message, "POS")
	assert.Contains(t, pe.Message, "Parse")
	assert.NotContains(t, pe.Message, string(capability.Tokenize)+" ")
}

func TestValidateDictVariantsAreDistinct(t *testing.T) {
	// A stage requiring a specific dictionary variant is not satisfied by the
	// plain tokenizer.
	stages := []Stage{
		capStage("tokenize", nil, []capability.Capability{capability.Tokenize}),
		capStage("needs-dict", []capability.Capability{capability.TokenizeWithDictA}, nil),
	}
	err := Validate(stages)
	require.Error(t, err)

	ok := []Stage{
		capStage("tokenize-dict-a", nil, []capability.Capability{capability.Tokenize, capability.TokenizeWithDictA}),
		capStage("needs-dict", []capability.Capability{capability.TokenizeWithDictA}, nil),
	}
	assert.NoError(t, Validate(ok))
}
