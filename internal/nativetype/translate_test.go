package nativetype

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRType_Void(t *testing.T) {
	tr := NewTranslator()

	irType := tr.IRType(Void())
	require.NotNil(t, irType)
	assert.Equal(t, types.Void, irType)

	at := tr.AnnotatedType(Void())
	assert.Equal(t, types.Void, at.IRType)
	assert.False(t, at.IsVoidPtr)
	assert.False(t, at.IsReference)
	assert.False(t, at.ExplicitlyUnsigned)
	assert.False(t, at.IsLong)
	assert.False(t, at.IsLongLong)
	require.Len(t, at.IsConst, 1)
	assert.False(t, at.IsConst[0])
	require.Len(t, at.IsVolatile, 1)
	assert.False(t, at.IsVolatile[0])
}

func TestIRType_Bool(t *testing.T) {
	tr := NewTranslator()

	irType := tr.IRType(Bool())
	assert.Same(t, types.I1, irType)

	// The const-qualified flavor maps to the identical IR type; only the
	// annotation flag differs.
	assert.Same(t, irType, tr.IRType(Bool().WithConst()))

	at := tr.AnnotatedType(Bool().WithConst())
	require.Len(t, at.IsConst, 1)
	assert.True(t, at.IsConst[0])
	assert.False(t, at.IsVolatile[0])
}

func TestIRType_FloatingPoint(t *testing.T) {
	tr := NewTranslator()

	assert.Same(t, types.Float, tr.IRType(Float()))
	assert.Same(t, types.Double, tr.IRType(Double()))
	assert.Same(t, types.Float, tr.IRType(Float().WithConst()))
	assert.Same(t, types.Double, tr.IRType(Double().WithConst()))

	at := tr.AnnotatedType(Double())
	assert.False(t, at.ExplicitlyUnsigned)
	assert.False(t, at.IsLong)
}

// integerFlavors covers every built-in integer spelling: the C flavors,
// their explicitly signed/unsigned versions, and the fixed-width aliases.
func integerFlavors() []struct {
	name     string
	desc     *Desc
	bits     int
	unsigned bool
	long     bool
	longLong bool
} {
	return []struct {
		name     string
		desc     *Desc
		bits     int
		unsigned bool
		long     bool
		longLong bool
	}{
		{"char", Char(), 8, false, false, false},
		{"short", Short(), 16, false, false, false},
		{"int", Int(), 32, false, false, false},
		{"long", Long(), 64, false, true, false},
		{"long long", LongLong(), 64, false, false, true},
		{"unsigned char", UChar(), 8, true, false, false},
		{"unsigned short", UShort(), 16, true, false, false},
		{"unsigned int", UInt(), 32, true, false, false},
		{"unsigned long", ULong(), 64, true, true, false},
		{"unsigned long long", ULongLong(), 64, true, false, true},
		{"int8", Int8(), 8, false, false, false},
		{"int16", Int16(), 16, false, false, false},
		{"int32", Int32(), 32, false, false, false},
		{"int64", Int64(), 64, false, false, false},
		{"uint8", UInt8(), 8, true, false, false},
		{"uint16", UInt16(), 16, true, false, false},
		{"uint32", UInt32(), 32, true, false, false},
		{"uint64", UInt64(), 64, true, false, false},
		{"size_t", SizeT(), 64, true, false, false},
		{"ptrdiff_t", PtrdiffT(), 64, false, false, false},
		{"uintptr_t", UintptrT(), 64, true, false, false},
	}
}

func TestIRType_IntegerFlavors(t *testing.T) {
	tr := NewTranslator()

	for _, tc := range integerFlavors() {
		t.Run(tc.name, func(t *testing.T) {
			irType := tr.IRType(tc.desc)
			intType, ok := irType.(*types.IntType)
			require.True(t, ok, "integer descriptor must map to an IR integer type")
			assert.Equal(t, uint64(tc.bits), intType.BitSize)

			// Same IR type with or without const.
			assert.Same(t, irType, tr.IRType(tc.desc.WithConst()))

			at := tr.AnnotatedType(tc.desc)
			assert.False(t, at.IsVoidPtr)
			assert.False(t, at.IsReference)
			assert.Equal(t, tc.unsigned, at.ExplicitlyUnsigned)
			assert.Equal(t, tc.long, at.IsLong)
			assert.Equal(t, tc.longLong, at.IsLongLong)
			require.Len(t, at.IsConst, 1)
			assert.False(t, at.IsConst[0])

			at = tr.AnnotatedType(tc.desc.WithConst())
			require.Len(t, at.IsConst, 1)
			assert.True(t, at.IsConst[0])
			assert.False(t, at.IsVolatile[0])
		})
	}
}

func TestIRType_EnumSharesUnderlyingType(t *testing.T) {
	tr := NewTranslator()

	simple := Enum("SimpleEnum", UInt())
	signed := Enum("SignedSimpleEnum", Int())
	wide := Enum("WideEnum", UInt64())

	// An enum maps to the exact same IR type instance as its underlying
	// integer, and two enums sharing an underlying representation share
	// one IR type.
	assert.Same(t, tr.IRType(UInt()), tr.IRType(simple))
	assert.Same(t, tr.IRType(Int()), tr.IRType(signed))
	assert.Same(t, tr.IRType(simple), tr.IRType(signed)) // both i32
	assert.Same(t, tr.IRType(UInt64()), tr.IRType(wide))

	at := tr.AnnotatedType(simple)
	assert.True(t, at.ExplicitlyUnsigned)
	assert.False(t, at.IsLong)

	at = tr.AnnotatedType(Enum("LongEnum", ULong()))
	assert.True(t, at.ExplicitlyUnsigned)
	assert.True(t, at.IsLong)
}

func TestIRType_PointerFlavors(t *testing.T) {
	tr := NewTranslator()

	checkIntPtr := func(d *Desc, bits uint64) {
		t.Helper()
		pt, ok := tr.IRType(d).(*types.PointerType)
		require.True(t, ok)
		elem, ok := pt.ElemType.(*types.IntType)
		require.True(t, ok)
		assert.Equal(t, bits, elem.BitSize)
	}

	// All four cv flavors of a pointer share one IR type.
	plain := PointerTo(Int())
	checkIntPtr(plain, 32)
	checkIntPtr(PointerTo(Int().WithConst()), 32)
	checkIntPtr(plain.WithConst(), 32)
	checkIntPtr(PointerTo(Int().WithConst()).WithConst(), 32)
	assert.Same(t, tr.IRType(plain), tr.IRType(PointerTo(Int().WithConst())))
	assert.Same(t, tr.IRType(plain), tr.IRType(plain.WithConst()))

	// References translate identically to pointers.
	assert.Same(t, tr.IRType(plain), tr.IRType(ReferenceTo(Int())))

	// Pointers to enums share the underlying integer's pointer type.
	assert.Same(t, tr.IRType(PointerTo(UInt())), tr.IRType(PointerTo(Enum("E", UInt()))))
}

func TestIRType_OpaquePointerConvention(t *testing.T) {
	tr := NewTranslator()

	isBytePtr := func(typ types.Type) bool {
		pt, ok := typ.(*types.PointerType)
		if !ok {
			return false
		}
		elem, ok := pt.ElemType.(*types.IntType)
		return ok && elem.BitSize == 8
	}

	// void* and struct pointers are both the opaque byte pointer.
	assert.True(t, isBytePtr(tr.IRType(PointerTo(Void()))))
	assert.True(t, isBytePtr(tr.IRType(PointerTo(Struct("TupleTableSlot")))))
	assert.True(t, isBytePtr(tr.IRType(ReferenceTo(Struct("TupleTableSlot")))))
	assert.Same(t, tr.IRType(PointerTo(Void())), tr.IRType(PointerTo(Struct("TupleTableSlot"))))

	// Struct layout stays hidden behind every level of indirection:
	// **T is i8** for struct T, matching **void.
	structPtrPtr := PointerTo(PointerTo(Struct("TupleTableSlot")))
	voidPtrPtr := PointerTo(PointerTo(Void()))
	assert.Same(t, tr.IRType(voidPtrPtr), tr.IRType(structPtrPtr))
	outer, ok := tr.IRType(structPtrPtr).(*types.PointerType)
	require.True(t, ok)
	assert.True(t, isBytePtr(outer.ElemType))

	// A pointer to a real scalar keeps real structure at depth 2.
	intPtrPtr, ok := tr.IRType(PointerTo(PointerTo(Int()))).(*types.PointerType)
	require.True(t, ok)
	inner, ok := intPtrPtr.ElemType.(*types.PointerType)
	require.True(t, ok)
	elem, ok := inner.ElemType.(*types.IntType)
	require.True(t, ok)
	assert.Equal(t, uint64(32), elem.BitSize)
}

func TestAnnotatedType_PointerQualifierLevels(t *testing.T) {
	tr := NewTranslator()

	// Pointer to scalar: 2 levels, innermost first.
	at := tr.AnnotatedType(PointerTo(Int().WithConst()))
	require.Len(t, at.IsConst, 2)
	assert.True(t, at.IsConst[0])  // const int
	assert.False(t, at.IsConst[1]) // mutable pointer
	assert.False(t, at.IsReference)
	assert.False(t, at.IsVoidPtr)

	// Const pointer to mutable scalar.
	at = tr.AnnotatedType(PointerTo(Int()).WithConst())
	require.Len(t, at.IsConst, 2)
	assert.False(t, at.IsConst[0])
	assert.True(t, at.IsConst[1])

	// Pointer to pointer: 3 levels.
	at = tr.AnnotatedType(PointerTo(PointerTo(Int().WithVolatile()).WithConst()))
	require.Len(t, at.IsConst, 3)
	require.Len(t, at.IsVolatile, 3)
	assert.True(t, at.IsVolatile[0])
	assert.True(t, at.IsConst[1])
	assert.False(t, at.IsConst[2])
}

func TestAnnotatedType_ReferenceOutermostNeverQualified(t *testing.T) {
	tr := NewTranslator()

	// Reference to const scalar.
	at := tr.AnnotatedType(ReferenceTo(Int().WithConst()))
	assert.True(t, at.IsReference)
	require.Len(t, at.IsConst, 2)
	assert.True(t, at.IsConst[0])
	assert.False(t, at.IsConst[1]) // reference level, always false
	assert.False(t, at.IsVolatile[1])

	// Reference to const pointer to volatile scalar: 3 levels.
	at = tr.AnnotatedType(ReferenceTo(PointerTo(Int().WithVolatile()).WithConst()))
	assert.True(t, at.IsReference)
	require.Len(t, at.IsConst, 3)
	assert.True(t, at.IsVolatile[0])
	assert.True(t, at.IsConst[1])
	assert.False(t, at.IsConst[2])
	assert.False(t, at.IsVolatile[2])
}

func TestAnnotatedType_ScalarPropertiesSurviveIndirection(t *testing.T) {
	tr := NewTranslator()

	at := tr.AnnotatedType(PointerTo(ULong()))
	assert.True(t, at.ExplicitlyUnsigned)
	assert.True(t, at.IsLong)
	assert.False(t, at.IsLongLong)

	at = tr.AnnotatedType(ReferenceTo(PointerTo(Enum("E", LongLong()))))
	assert.False(t, at.ExplicitlyUnsigned)
	assert.True(t, at.IsLongLong)
	assert.True(t, at.IsReference)
	assert.False(t, at.IsVoidPtr)

	// Bool behind a pointer is never "explicitly unsigned".
	at = tr.AnnotatedType(PointerTo(Bool()))
	assert.False(t, at.ExplicitlyUnsigned)
}

func TestFuncType(t *testing.T) {
	tr := NewTranslator()

	// No parameters, void return.
	ft := tr.FuncType(Void())
	assert.Same(t, types.Void, ft.RetType)
	assert.Empty(t, ft.Params)

	// Mixed scalar parameters.
	ft = tr.FuncType(Double(), Int(), Float(), SizeT(), Enum("E", Int()))
	assert.Same(t, types.Double, ft.RetType)
	require.Len(t, ft.Params, 4)
	assert.Same(t, tr.IRType(Int()), ft.Params[0])
	assert.Same(t, tr.IRType(Float()), ft.Params[1])
	assert.Same(t, tr.IRType(SizeT()), ft.Params[2])
	assert.Same(t, tr.IRType(Int()), ft.Params[3])

	// Pointer and reference parameters, struct pointers opaque.
	ft = tr.FuncType(PointerTo(Void()),
		ReferenceTo(Int().WithConst()),
		PointerTo(Struct("HeapTuple")),
		PointerTo(SizeT().WithConst()))
	assert.Same(t, tr.IRType(PointerTo(Void())), ft.RetType)
	require.Len(t, ft.Params, 3)
	assert.Same(t, tr.IRType(PointerTo(Int())), ft.Params[0])
	assert.Same(t, tr.IRType(PointerTo(Void())), ft.Params[1])
	assert.Same(t, tr.IRType(PointerTo(SizeT())), ft.Params[2])
}
