package nativetype

import (
	"github.com/llir/llvm/ir/types"
)

// Annotated pairs an IR type with the host-type properties the IR type
// system discards.
//
// IsConst and IsVolatile record cv-qualification per indirection level,
// innermost scalar first. Their length is always IndirectionDepth()+1. The
// outermost level of a reference can never be cv-qualified, so that entry is
// always false for references.
type Annotated struct {
	// IRType is the translated IR type.
	IRType types.Type

	// IsVoidPtr reports whether the innermost scalar (after stripping all
	// indirection) is void or a user-defined struct/class, i.e. whether
	// the translation used the opaque byte-pointer convention.
	IsVoidPtr bool

	// IsReference reports whether the outermost level is a reference
	// rather than a pointer.
	IsReference bool

	// ExplicitlyUnsigned reports whether the innermost scalar is an
	// unsigned arithmetic type other than bool, or an enum represented as
	// one.
	ExplicitlyUnsigned bool

	// IsLong and IsLongLong report whether the innermost scalar was
	// declared "long" / "long long" (directly or through an enum's
	// underlying type).
	IsLong     bool
	IsLongLong bool

	// IsConst records const qualification per level, innermost first.
	IsConst []bool

	// IsVolatile records volatile qualification per level, innermost
	// first.
	IsVolatile []bool
}
