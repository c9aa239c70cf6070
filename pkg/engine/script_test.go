package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/tree"
)

const echoScript = `
function annotate(tokens, pos) {
	var parts = [];
	for (var i = 0; i < tokens.length; i++) {
		parts.push("(W " + tokens[i] + ")");
	}
	return "(S " + parts.join(" ") + ")";
}
`

func TestScriptEngineAnnotate(t *testing.T) {
	eng, err := NewScriptEngine(echoScript)
	require.NoError(t, err)

	n, err := eng.Annotate(context.Background(), []string{"The", "cat", "sat"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "S", n.Label)
	assert.Equal(t, []string{"The", "cat", "sat"}, n.Leaves())
}

func TestScriptEngineReceivesPOS(t *testing.T) {
	eng, err := NewScriptEngine(`
function annotate(tokens, pos) {
	return "(S (W " + tokens[0] + "_" + pos[0] + "))";
}
`)
	require.NoError(t, err)

	n, err := eng.Annotate(context.Background(), []string{"cat"}, []string{"NN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat_NN"}, n.Leaves())
}

func TestScriptEngineMissingAnnotate(t *testing.T) {
	_, err := NewScriptEngine(`var x = 1;`)
	require.Error(t, err)
	assert.True(t, apperrors.IsLifecycle(err))
}

func TestScriptEngineInvalidSource(t *testing.T) {
	_, err := NewScriptEngine(`function annotate(`)
	require.Error(t, err)
	assert.True(t, apperrors.IsLifecycle(err))
}

func TestScriptEngineNullResultIsDegenerate(t *testing.T) {
	eng, err := NewScriptEngine(`function annotate(tokens, pos) { return null; }`)
	require.NoError(t, err)

	_, err = eng.Annotate(context.Background(), []string{"a"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDegenerateParse)
}

func TestScriptEngineNonStringResultIsMalformed(t *testing.T) {
	eng, err := NewScriptEngine(`function annotate(tokens, pos) { return 42; }`)
	require.NoError(t, err)

	_, err = eng.Annotate(context.Background(), []string{"a"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedResponse)
}

func TestScriptEngineThrowIsAnnotationError(t *testing.T) {
	eng, err := NewScriptEngine(`function annotate(tokens, pos) { throw new Error("no parse"); }`)
	require.NoError(t, err)

	_, err = eng.Annotate(context.Background(), []string{"a"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsAnnotation(err))
}

func TestScriptEngineCancelledContext(t *testing.T) {
	eng, err := NewScriptEngine(echoScript)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Annotate(ctx, []string{"a"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScriptFactoryCreatesIndependentInstances(t *testing.T) {
	factory := ScriptFactory(echoScript)
	a, err := factory()
	require.NoError(t, err)
	b, err := factory()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestFuncAdapter(t *testing.T) {
	called := false
	eng := Func(func(ctx context.Context, tokens []string, pos []string) (*tree.Node, error) {
		called = true
		return nil, nil
	})
	_, _ = eng.Annotate(context.Background(), nil, nil)
	assert.True(t, called)
}
