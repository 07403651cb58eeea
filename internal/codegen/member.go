package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// PointerToMember computes the address of a member reached from base by
// following a chain of byte offsets, and types the result as a pointer to
// member. The computation is pure address arithmetic over the opaque byte
// representation: base is never dereferenced, so a null or dangling base is
// legal right up until someone loads through the result.
//
// An empty chain returns base retyped to the member pointer. base must
// already be in the opaque byte-pointer convention; a nil base value, a
// non-pointer base or a typed pointer base is a contract violation.
func (g *Generator) PointerToMember(base value.Value, member *nativetype.Desc, offsets ...int64) value.Value {
	block := g.at("PointerToMember")
	if base == nil {
		violate("PointerToMember", "base value is nil")
	}
	if _, ok := base.Type().(*types.PointerType); !ok {
		violate("PointerToMember", "base is %v, not a pointer", base.Type())
	}
	if !isBytePointer(base.Type()) {
		violate("PointerToMember", "base is %v, not an opaque byte pointer", base.Type())
	}
	want := g.tr.IRType(nativetype.PointerTo(member))

	var total int64
	for _, off := range offsets {
		if off < 0 {
			violate("PointerToMember", "negative member offset %d", off)
		}
		total += off
	}
	if total == 0 {
		return g.retype(block, base, want)
	}

	addr := block.NewGetElementPtr(types.I8, base, constant.NewInt(types.I64, total))
	addr.InBounds = true
	return g.retype(block, addr, want)
}

// retype bitcasts v to want unless it already has that type.
func (g *Generator) retype(block *ir.Block, v value.Value, want types.Type) value.Value {
	if types.Equal(v.Type(), want) {
		return v
	}
	return block.NewBitCast(v, want)
}

func isBytePointer(t types.Type) bool {
	pt, ok := t.(*types.PointerType)
	if !ok {
		return false
	}
	it, ok := pt.ElemType.(*types.IntType)
	return ok && it.BitSize == 8
}
