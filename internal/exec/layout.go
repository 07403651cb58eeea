package exec

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
)

// SizeOf reports the store size in bytes of a first-class type under the
// engine's data layout. Pointers are 8 bytes; i1 occupies a full byte in
// memory. Aggregates are deliberately unsupported: struct pointees are
// opaque, so nothing ever loads or indexes a struct type directly.
func SizeOf(t types.Type) int64 {
	switch tt := t.(type) {
	case *types.IntType:
		if tt.BitSize == 1 {
			return 1
		}
		return int64(tt.BitSize / 8)
	case *types.FloatType:
		switch tt.Kind {
		case types.FloatKindFloat:
			return 4
		case types.FloatKindDouble:
			return 8
		}
	case *types.PointerType:
		return 8
	}
	panic(fmt.Sprintf("exec: no data layout for type %v", t))
}
