package exec

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// LinkError reports a module whose external symbols could not all be
// resolved against the bindings supplied at engine construction.
type LinkError struct {
	Symbol string
	Reason string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("exec: cannot link %q: %s", e.Symbol, e.Reason)
}

// Engine runs a finalized module. Construct one with NewEngine; the module
// must not be mutated afterwards.
type Engine struct {
	mod   *ir.Module
	funcs map[string]*ir.Func

	// externs binds declaration-only functions to host Go callables.
	externs map[*ir.Func]reflect.Value

	// globalAddr binds declaration-only globals to host addresses. The
	// generator uses such globals as placeholders for pointer constants.
	globalAddr map[*ir.Global]uint64

	// floatBits overrides the bit pattern of individual float constants,
	// preserving payloads a decimal round-trip would lose.
	floatBits map[*constant.Float]uint64
}

// Bindings carries everything the engine needs to resolve a module's
// external references.
type Bindings struct {
	Externals map[string]reflect.Value
	Globals   map[string]unsafe.Pointer
	FloatBits map[*constant.Float]uint64
}

// NewEngine links mod against the supplied bindings. Every declaration-only
// function and global in the module must have a binding; a missing one is a
// LinkError.
func NewEngine(mod *ir.Module, b Bindings) (*Engine, error) {
	e := &Engine{
		mod:        mod,
		funcs:      make(map[string]*ir.Func, len(mod.Funcs)),
		externs:    make(map[*ir.Func]reflect.Value),
		globalAddr: make(map[*ir.Global]uint64),
		floatBits:  b.FloatBits,
	}
	for _, f := range mod.Funcs {
		e.funcs[f.Name()] = f
		if len(f.Blocks) > 0 {
			continue
		}
		impl, ok := b.Externals[f.Name()]
		if !ok {
			return nil, &LinkError{Symbol: f.Name(), Reason: "external function has no host binding"}
		}
		if impl.Kind() != reflect.Func {
			return nil, &LinkError{Symbol: f.Name(), Reason: "host binding is not a function"}
		}
		e.externs[f] = impl
	}
	for _, g := range mod.Globals {
		if g.Init != nil {
			continue
		}
		addr, ok := b.Globals[g.Name()]
		if !ok {
			return nil, &LinkError{Symbol: g.Name(), Reason: "external global has no host address"}
		}
		e.globalAddr[g] = uint64(uintptr(addr))
	}
	return e, nil
}

// Function looks up a defined or external function by name.
func (e *Engine) Function(name string) (*Function, bool) {
	f, ok := e.funcs[name]
	if !ok {
		return nil, false
	}
	return &Function{eng: e, fn: f}, true
}

// A Function is an invocable handle into the engine.
type Function struct {
	eng *Engine
	fn  *ir.Func
}

// Sig reports the IR signature of the function.
func (f *Function) Sig() *types.FuncType { return f.fn.Sig }

// Name reports the symbol name of the function.
func (f *Function) Name() string { return f.fn.Name() }

// Call invokes the function with raw engine words. The caller is
// responsible for having the right number and encoding of arguments; Sig
// describes both.
func (f *Function) Call(args ...uint64) uint64 {
	if len(args) != len(f.fn.Sig.Params) {
		panic(fmt.Sprintf("exec: %s called with %d args, signature has %d",
			f.fn.Name(), len(args), len(f.fn.Sig.Params)))
	}
	return f.eng.run(f.fn, args)
}

// Interface wraps the function in a Go func value of type rt, converting
// arguments and results at the boundary. rt must mirror the IR signature;
// use nativetype.FromGoType against Sig to validate before calling this.
func (f *Function) Interface(rt reflect.Type) reflect.Value {
	return reflect.MakeFunc(rt, func(in []reflect.Value) []reflect.Value {
		args := make([]uint64, len(in))
		for i, v := range in {
			args[i] = goToWord(v)
		}
		ret := f.Call(args...)
		if rt.NumOut() == 0 {
			return nil
		}
		return []reflect.Value{wordToGo(ret, rt.Out(0))}
	})
}

// callGo dispatches an external call to its bound Go callable.
func (e *Engine) callGo(impl reflect.Value, args []uint64) uint64 {
	rt := impl.Type()
	if rt.NumIn() != len(args) {
		panic(fmt.Sprintf("exec: external %s takes %d args, call has %d", rt, rt.NumIn(), len(args)))
	}
	in := make([]reflect.Value, len(args))
	for i, w := range args {
		in[i] = wordToGo(w, rt.In(i))
	}
	out := impl.Call(in)
	if len(out) == 0 {
		return 0
	}
	return goToWord(out[0])
}
