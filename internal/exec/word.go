package exec

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/llir/llvm/ir/types"
)

// A word is the engine's universal value representation. Integers are kept
// truncated to their declared bit width, floats carry their IEEE 754 bit
// pattern and pointers carry the raw address.

// mask truncates w to the low bits of an integer type.
func mask(w uint64, bits uint64) uint64 {
	if bits >= 64 {
		return w
	}
	return w & (1<<bits - 1)
}

// sext sign-extends the low bits of w to a full word.
func sext(w uint64, bits uint64) uint64 {
	if bits >= 64 {
		return w
	}
	sign := uint64(1) << (bits - 1)
	return (w ^ sign) - sign
}

// maskType truncates w to the width of t when t is an integer type.
func maskType(w uint64, t types.Type) uint64 {
	if it, ok := t.(*types.IntType); ok {
		return mask(w, it.BitSize)
	}
	return w
}

// goToWord converts a Go value into the engine representation.
func goToWord(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32:
		return uint64(math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return math.Float64bits(v.Float())
	case reflect.Ptr:
		return uint64(v.Pointer())
	case reflect.UnsafePointer:
		return uint64(v.Pointer())
	}
	panic(fmt.Sprintf("exec: cannot pass Go %s value to generated code", v.Kind()))
}

// wordToGo converts an engine word back into a Go value of type rt.
func wordToGo(w uint64, rt reflect.Type) reflect.Value {
	switch rt.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(w&1 != 0).Convert(rt)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := uint64(rt.Size() * 8)
		out := reflect.New(rt).Elem()
		out.SetInt(int64(sext(mask(w, bits), bits)))
		return out
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		bits := uint64(rt.Size() * 8)
		out := reflect.New(rt).Elem()
		out.SetUint(mask(w, bits))
		return out
	case reflect.Float32:
		out := reflect.New(rt).Elem()
		out.SetFloat(float64(math.Float32frombits(uint32(w))))
		return out
	case reflect.Float64:
		out := reflect.New(rt).Elem()
		out.SetFloat(math.Float64frombits(w))
		return out
	case reflect.Ptr:
		return reflect.NewAt(rt.Elem(), unsafe.Pointer(uintptr(w)))
	case reflect.UnsafePointer:
		return reflect.ValueOf(unsafe.Pointer(uintptr(w)))
	}
	panic(fmt.Sprintf("exec: cannot return engine value as Go %s", rt.Kind()))
}

// loadWord reads a value of type t from host memory at addr.
func loadWord(addr uint64, t types.Type) uint64 {
	p := unsafe.Pointer(uintptr(addr))
	switch tt := t.(type) {
	case *types.IntType:
		switch {
		case tt.BitSize <= 8:
			return mask(uint64(*(*uint8)(p)), tt.BitSize)
		case tt.BitSize == 16:
			return uint64(*(*uint16)(p))
		case tt.BitSize == 32:
			return uint64(*(*uint32)(p))
		case tt.BitSize == 64:
			return *(*uint64)(p)
		}
	case *types.FloatType:
		switch tt.Kind {
		case types.FloatKindFloat:
			return uint64(math.Float32bits(*(*float32)(p)))
		case types.FloatKindDouble:
			return math.Float64bits(*(*float64)(p))
		}
	case *types.PointerType:
		return uint64(*(*uintptr)(p))
	}
	panic(fmt.Sprintf("exec: cannot load value of type %v", t))
}

// storeWord writes a value of type t to host memory at addr.
func storeWord(addr, w uint64, t types.Type) {
	p := unsafe.Pointer(uintptr(addr))
	switch tt := t.(type) {
	case *types.IntType:
		switch {
		case tt.BitSize <= 8:
			*(*uint8)(p) = uint8(mask(w, tt.BitSize))
			return
		case tt.BitSize == 16:
			*(*uint16)(p) = uint16(w)
			return
		case tt.BitSize == 32:
			*(*uint32)(p) = uint32(w)
			return
		case tt.BitSize == 64:
			*(*uint64)(p) = w
			return
		}
	case *types.FloatType:
		switch tt.Kind {
		case types.FloatKindFloat:
			*(*float32)(p) = math.Float32frombits(uint32(w))
			return
		case types.FloatKindDouble:
			*(*float64)(p) = math.Float64frombits(w)
			return
		}
	case *types.PointerType:
		*(*uintptr)(p) = uintptr(w)
		return
	}
	panic(fmt.Sprintf("exec: cannot store value of type %v", t))
}
