package codegen

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/llir/llvm/ir"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// callableKey identifies the host callable behind fn. The code pointer
// reflect reports is shared by every method value of one method and by all
// closures of one literal, so the interface data word is used instead: it
// addresses the func value itself, which is distinct per bound receiver
// and per closure instance.
func callableKey(fn any) uintptr {
	return uintptr((*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1])
}

// RegisterExternalFunction declares the host Go callable fn inside the
// module so generated code can call it. name is the symbol name to declare
// it under; an empty name synthesizes one.
//
// Registration is idempotent per callable: registering the same function
// value again returns the original declaration and ignores the new name.
// fn must be a non-variadic function with at most one result, and every
// parameter and result must translate to an IR type; anything else is a
// contract violation.
func (g *Generator) RegisterExternalFunction(name string, fn any) *ir.Func {
	g.mustBuild("RegisterExternalFunction")
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		violate("RegisterExternalFunction", "%T is not a function", fn)
	}
	key := callableKey(fn)
	if decl, ok := g.externals[key]; ok {
		return decl
	}

	sig, err := nativetype.FromGoType(rv.Type())
	if err != nil {
		violate("RegisterExternalFunction", "%v", err)
	}
	if name == "" {
		name = fmt.Sprintf("%s.ext.%d", g.name, g.extSeq)
	}
	g.extSeq++
	if _, taken := g.bindings[name]; taken {
		violate("RegisterExternalFunction", "external %q already registered to another callable", name)
	}
	for _, f := range g.mod.Funcs {
		if f.Name() == name {
			violate("RegisterExternalFunction", "function %q already exists", name)
		}
	}

	params := make([]*ir.Param, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), g.tr.IRType(p))
	}
	decl := g.mod.NewFunc(name, g.tr.IRType(sig.Ret), params...)
	g.externals[key] = decl
	g.bindings[name] = rv
	g.log.Debug("external function registered", "symbol", name, "go_type", rv.Type().String())
	return decl
}
