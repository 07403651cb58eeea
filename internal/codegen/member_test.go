package codegen

import (
	"testing"
	"unsafe"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// tupleSlot mimics a host row representation addressed by generated code.
type tupleSlot struct {
	flag   int8
	natts  int32
	values tupleValues
}

type tupleValues struct {
	a int64
	b int64
}

// buildMemberAccessor compiles a function loading one member of tupleSlot
// reached through the given offset chain.
func buildMemberAccessor[T any](t *testing.T, name string, member *nativetype.Desc, elem types.Type, offsets ...int64) func(*tupleSlot) T {
	t.Helper()
	g := newTestGenerator(t, "deform")
	sig := nativetype.FuncOf(member, nativetype.PointerTo(nativetype.Struct("tupleSlot")))
	f := g.CreateFunction(name, sig)
	g.SetInsertPoint(g.CreateBlock("entry", f))
	addr := g.PointerToMember(f.Params[0], member, offsets...)
	g.Ret(g.Load(elem, addr))
	require.NoError(t, g.PrepareForExecution(OptDefault))

	accessor, ok := Bind[func(*tupleSlot) T](g, name)
	require.True(t, ok)
	return accessor
}

func TestPointerToMemberLoadsFields(t *testing.T) {
	slot := &tupleSlot{flag: 3, natts: 29}

	getFlag := buildMemberAccessor[int8](t, "get_flag", nativetype.Char(), types.I8,
		int64(unsafe.Offsetof(slot.flag)))
	getNatts := buildMemberAccessor[int32](t, "get_natts", nativetype.Int32(), types.I32,
		int64(unsafe.Offsetof(slot.natts)))

	assert.Equal(t, int8(3), getFlag(slot))
	assert.Equal(t, int32(29), getNatts(slot))
}

func TestPointerToMemberNestedChain(t *testing.T) {
	slot := &tupleSlot{}
	slot.values.b = -777

	getB := buildMemberAccessor[int64](t, "get_b", nativetype.Int64(), types.I64,
		int64(unsafe.Offsetof(slot.values)),
		int64(unsafe.Offsetof(slot.values.b)))
	assert.Equal(t, int64(-777), getB(slot))
}

func TestPointerToMemberEmptyChainIsBase(t *testing.T) {
	slot := &tupleSlot{flag: 9}
	getSelf := buildMemberAccessor[int8](t, "get_self", nativetype.Char(), types.I8)
	assert.Equal(t, int8(9), getSelf(slot))
}

func TestPointerToMemberNullBaseIsPureArithmetic(t *testing.T) {
	// Address computation must not touch the base, so offsetting from a
	// null pointer is the classic offsetof idiom.
	g := newTestGenerator(t, "offsetof")
	f := g.CreateFunction("natts_offset", nativetype.FuncOf(nativetype.UintptrT()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	null := g.Constant((*tupleSlot)(nil))
	addr := g.PointerToMember(null, nativetype.Int32(), int64(unsafe.Offsetof(tupleSlot{}.natts)))
	g.Ret(g.PtrToInt(addr, types.I64))

	require.NoError(t, g.PrepareForExecution(OptNone))
	offset, ok := Bind[func() uintptr](g, "natts_offset")
	require.True(t, ok)
	assert.Equal(t, unsafe.Offsetof(tupleSlot{}.natts), offset())
}

func TestPointerToMemberRequiresPointerBase(t *testing.T) {
	g := newTestGenerator(t, "badbase")
	f := g.CreateFunction("f", nativetype.FuncOf(nativetype.Void(), nativetype.Int32()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	expectViolation(t, "PointerToMember", func() {
		g.PointerToMember(f.Params[0], nativetype.Int32(), 4)
	})
}

func TestPointerToMemberRequiresOpaqueBase(t *testing.T) {
	// A typed pointer base breaks the opaque-pointer convention even
	// though it is pointer-shaped.
	g := newTestGenerator(t, "typedbase")
	f := g.CreateFunction("f", nativetype.FuncOf(nativetype.Int32(), nativetype.PointerTo(nativetype.Int32())))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	expectViolation(t, "PointerToMember", func() {
		g.PointerToMember(f.Params[0], nativetype.Int32(), 4)
	})
}

func TestPointerToMemberRejectsNilBase(t *testing.T) {
	g := newTestGenerator(t, "nilbase")
	f := g.CreateFunction("f", nativetype.FuncOf(nativetype.Void()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	expectViolation(t, "PointerToMember", func() {
		g.PointerToMember(nil, nativetype.Int32(), 4)
	})
}

func TestPointerToMemberRejectsNegativeOffset(t *testing.T) {
	g := newTestGenerator(t, "negoff")
	f := g.CreateFunction("f", nativetype.FuncOf(nativetype.Void(), nativetype.PointerTo(nativetype.Struct("s"))))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	expectViolation(t, "PointerToMember", func() {
		g.PointerToMember(f.Params[0], nativetype.Int32(), -8)
	})
}
