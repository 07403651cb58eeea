package nativetype

import (
	"fmt"
	"reflect"
)

// FromGoType derives a descriptor from a Go type. This is the reflection
// step that feeds the translator when the host side of the bridge is Go
// itself: registered external functions, typed function handles, and struct
// layouts derived from Go structs all route through here.
//
// Go has no unsigned/signed aliasing games, no long/long long and no
// references, so the derived descriptors never set those flags. Types with
// no sensible foreign representation (slices, maps, channels, strings,
// interfaces) are rejected.
func FromGoType(rt reflect.Type) (*Desc, error) {
	switch rt.Kind() {
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int:
		return SignedInt(int(rt.Size())), nil
	case reflect.Int8:
		return Int8(), nil
	case reflect.Int16:
		return Int16(), nil
	case reflect.Int32:
		return Int32(), nil
	case reflect.Int64:
		return Int64(), nil
	case reflect.Uint:
		return UnsignedInt(int(rt.Size())), nil
	case reflect.Uint8:
		return UInt8(), nil
	case reflect.Uint16:
		return UInt16(), nil
	case reflect.Uint32:
		return UInt32(), nil
	case reflect.Uint64:
		return UInt64(), nil
	case reflect.Uintptr:
		return UintptrT(), nil
	case reflect.Float32:
		return Float(), nil
	case reflect.Float64:
		return Double(), nil
	case reflect.Pointer:
		elem, err := FromGoType(rt.Elem())
		if err != nil {
			return nil, fmt.Errorf("pointee of %s: %w", rt, err)
		}
		return PointerTo(elem), nil
	case reflect.UnsafePointer:
		return PointerTo(Void()), nil
	case reflect.Struct:
		return Struct(rt.Name()), nil
	case reflect.Func:
		return fromGoFunc(rt)
	default:
		return nil, fmt.Errorf("nativetype: Go type %s has no foreign representation", rt)
	}
}

func fromGoFunc(rt reflect.Type) (*Desc, error) {
	if rt.IsVariadic() {
		return nil, fmt.Errorf("nativetype: variadic function %s has no foreign representation", rt)
	}
	var ret *Desc
	switch rt.NumOut() {
	case 0:
		ret = Void()
	case 1:
		var err error
		ret, err = FromGoType(rt.Out(0))
		if err != nil {
			return nil, fmt.Errorf("return of %s: %w", rt, err)
		}
	default:
		return nil, fmt.Errorf("nativetype: multi-value function %s has no foreign representation", rt)
	}
	params := make([]*Desc, rt.NumIn())
	for i := range params {
		p, err := FromGoType(rt.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, rt, err)
		}
		params[i] = p
	}
	return FuncOf(ret, params...), nil
}
