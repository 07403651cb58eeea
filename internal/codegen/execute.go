package codegen

import (
	"errors"
	"reflect"
	"unsafe"

	"github.com/llir/llvm/ir/types"

	"github.com/ashwinstar/gpdb/internal/exec"
	"github.com/ashwinstar/gpdb/internal/nativetype"
)

type prepConfig struct {
	optOpts []OptimizeOption
}

// PrepareOption adjusts a PrepareForExecution run.
type PrepareOption func(*prepConfig)

// WithoutOptimizations links the module exactly as built. Structural
// verification still runs.
func WithoutOptimizations() PrepareOption {
	return func(c *prepConfig) { c.optOpts = append(c.optOpts, VerifyOnly()) }
}

// WithOptimizeOptions forwards options to the optimizer run.
func WithOptimizeOptions(opts ...OptimizeOption) PrepareOption {
	return func(c *prepConfig) { c.optOpts = append(c.optOpts, opts...) }
}

// PrepareForExecution optimizes the module at level and links it into the
// execution engine. On success the generator transitions to compiled:
// Module returns nil, the builder methods become contract violations and
// function handles may be taken. On failure the generator stays in the
// building state so the caller can fix the module and retry.
func (g *Generator) PrepareForExecution(level OptLevel, opts ...PrepareOption) error {
	g.mustBuild("PrepareForExecution")
	var cfg prepConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := g.Optimize(level, cfg.optOpts...); err != nil {
		return err
	}

	globals := make(map[string]unsafe.Pointer, len(g.ptrAddrs))
	for name, addr := range g.ptrAddrs {
		globals[name] = unsafe.Pointer(addr)
	}
	eng, err := exec.NewEngine(g.mod, exec.Bindings{
		Externals: g.bindings,
		Globals:   globals,
		FloatBits: g.floatBits,
	})
	if err != nil {
		var linkErr *exec.LinkError
		if errors.As(err, &linkErr) {
			return &CompileError{Code: ErrCodeLinkFailed, Message: linkErr.Reason, Symbol: linkErr.Symbol}
		}
		return err
	}

	g.eng = eng
	g.state = stateCompiled
	g.cur = nil
	g.log.Info("module compiled",
		"functions", len(g.mod.Funcs),
		"opt_level", level.String())
	return nil
}

// Compiled reports whether PrepareForExecution has succeeded.
func (g *Generator) Compiled() bool { return g.state == stateCompiled }

// FunctionHandle looks up a compiled function and checks it against the
// expected signature descriptor. A name that was never defined returns
// ok=false; a defined name with a different signature is a contract
// violation, since the caller's expectation and the module it built have
// diverged. Calling before PrepareForExecution is likewise a violation.
func (g *Generator) FunctionHandle(name string, sig *nativetype.Desc) (*exec.Function, bool) {
	if g.state != stateCompiled {
		violate("FunctionHandle", "generator %s has not been prepared for execution", g.name)
	}
	if sig.Kind != nativetype.KindFunc {
		violate("FunctionHandle", "descriptor %s is not a function type", sig)
	}
	fn, ok := g.eng.Function(name)
	if !ok {
		return nil, false
	}
	want := g.tr.FuncType(sig.Ret, sig.Params...)
	if !types.Equal(fn.Sig(), want) {
		violate("FunctionHandle", "function %q has signature %v, caller expects %v", name, fn.Sig(), want)
	}
	return fn, true
}

// Bind wraps a compiled function in a Go func of type F, converting
// arguments and results at the boundary. The handle stays valid for the
// life of the generator. Lookup misses return ok=false; a signature
// mismatch between F and the compiled function is a contract violation.
func Bind[F any](g *Generator, name string) (F, bool) {
	var zero F
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Func {
		violate("Bind", "type parameter %T is not a function type", zero)
	}
	sig, err := nativetype.FromGoType(rt)
	if err != nil {
		violate("Bind", "%v", err)
	}
	fn, ok := g.FunctionHandle(name, sig)
	if !ok {
		return zero, false
	}
	return fn.Interface(rt).Interface().(F), true
}
