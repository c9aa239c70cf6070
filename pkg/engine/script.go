package engine

import (
	"context"

	"github.com/dop251/goja"

	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/tree"
)

// ScriptEngine runs a user-supplied JavaScript analysis inside a private
// goja runtime. The script must define a global function
//
//	annotate(tokens, pos) -> string
//
// returning a bracketed tree. goja runtimes are not safe for concurrent
// use, which is exactly why each instance is created per worker and never
// shared.
type ScriptEngine struct {
	vm       *goja.Runtime
	annotate goja.Callable
}

// NewScriptEngine evaluates the script source in a fresh runtime. A script
// that fails to evaluate or does not define annotate is a lifecycle error.
func NewScriptEngine(src string) (*ScriptEngine, error) {
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return nil, apperrors.Lifecycle("evaluating engine script", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("annotate"))
	if !ok {
		return nil, apperrors.Lifecycle("engine script does not define annotate(tokens, pos)", nil)
	}
	return &ScriptEngine{vm: vm, annotate: fn}, nil
}

// Annotate calls the script's annotate function and decodes its result.
func (e *ScriptEngine) Annotate(ctx context.Context, tokens []string, pos []string) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	val, err := e.annotate(goja.Undefined(), e.vm.ToValue(tokens), e.vm.ToValue(pos))
	if err != nil {
		return nil, apperrors.Annotation("engine script failed", err)
	}
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil, apperrors.Annotation("engine script returned no result", apperrors.ErrDegenerateParse)
	}
	s, ok := val.Export().(string)
	if !ok {
		return nil, apperrors.Consistency("engine script must return a bracketed tree string", apperrors.ErrMalformedResponse)
	}
	return tree.Parse(s)
}

// ScriptFactory returns a Factory creating one private runtime per engine
// instance.
func ScriptFactory(src string) Factory {
	return func() (Engine, error) {
		return NewScriptEngine(src)
	}
}
