package codegen

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// Constant materializes a host Go value as an IR constant of the
// corresponding IR type. The translation is lossless:
//
//   - Integers keep their exact value regardless of signedness or width.
//   - Floats keep their exact bit pattern, NaN payloads included; the
//     pattern travels beside the module rather than through a decimal
//     round-trip.
//   - A nil pointer becomes a null pointer constant. A non-nil pointer
//     becomes an external global placeholder interned per address, so the
//     emitted IR never contains a literal host address.
//
// Unsupported host values (strings, slices, channels, funcs) are a
// contract violation; funcs enter modules through RegisterExternalFunction
// instead.
func (g *Generator) Constant(v any) value.Value {
	g.mustBuild("Constant")
	rv := reflect.ValueOf(v)
	if v == nil {
		violate("Constant", "untyped nil has no IR type; use a typed nil pointer")
	}
	d, err := nativetype.FromGoType(rv.Type())
	if err != nil {
		violate("Constant", "%v", err)
	}
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return constant.True
		}
		return constant.False
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return constant.NewInt(g.tr.IRType(d).(*types.IntType), rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return g.uintConstant(g.tr.IRType(d).(*types.IntType), rv.Uint())
	case reflect.Float32:
		return g.floatConstant(types.Float, uint64(math.Float32bits(float32(rv.Float()))))
	case reflect.Float64:
		return g.floatConstant(types.Double, math.Float64bits(rv.Float()))
	case reflect.Ptr, reflect.UnsafePointer:
		ptrType := g.tr.IRType(d).(*types.PointerType)
		if rv.Pointer() == 0 {
			return constant.NewNull(ptrType)
		}
		return g.pointerPlaceholder(rv.Pointer(), ptrType)
	}
	violate("Constant", "cannot materialize Go %s value", rv.Kind())
	return nil
}

// uintConstant builds an integer constant from an unsigned host value,
// taking the big.Int route for values above the signed range.
func (g *Generator) uintConstant(t *types.IntType, u uint64) *constant.Int {
	if u <= math.MaxInt64 {
		return constant.NewInt(t, int64(u))
	}
	return &constant.Int{Typ: t, X: new(big.Int).SetUint64(u)}
}

// floatConstant builds a float constant whose exact bit pattern is
// recorded for the execution engine.
func (g *Generator) floatConstant(t *types.FloatType, bits uint64) *constant.Float {
	var f float64
	if t.Kind == types.FloatKindFloat {
		f = float64(math.Float32frombits(uint32(bits)))
	} else {
		f = math.Float64frombits(bits)
	}
	var c *constant.Float
	if math.IsNaN(f) {
		c = &constant.Float{Typ: t, NaN: true}
	} else {
		c = &constant.Float{Typ: t, X: big.NewFloat(f)}
	}
	g.floatBits[c] = bits
	return c
}

// pointerPlaceholder interns one external global per distinct host
// address. The global's content type is the pointee, so the global itself
// carries the pointer type callers expect; a later request for the same
// address under a different pointee type reuses the placeholder through a
// constant bitcast.
func (g *Generator) pointerPlaceholder(addr uintptr, ptrType *types.PointerType) constant.Constant {
	gl, ok := g.ptrGlobals[addr]
	if !ok {
		name := fmt.Sprintf("%s.ptr.%d", g.name, g.ptrSeq)
		g.ptrSeq++
		gl = g.mod.NewGlobal(name, ptrType.ElemType)
		g.ptrGlobals[addr] = gl
		g.ptrAddrs[name] = addr
	}
	if !types.Equal(gl.Type(), ptrType) {
		return constant.NewBitCast(gl, ptrType)
	}
	return gl
}
