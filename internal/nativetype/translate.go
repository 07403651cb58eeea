package nativetype

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
)

// Translator maps descriptors to IR types with interning: equal descriptor
// shapes always yield the identical types.Type instance, so downstream type
// identity checks are pointer comparisons.
//
// A Translator is owned by a single generator and is not safe for concurrent
// use.
type Translator struct {
	// ptrs interns pointer types by element type instance. Element types
	// are themselves interned (the scalar types are package singletons),
	// so the element pointer is a sound key.
	ptrs map[types.Type]*types.PointerType
}

// NewTranslator returns an empty translator.
func NewTranslator() *Translator {
	return &Translator{
		ptrs: make(map[types.Type]*types.PointerType),
	}
}

// IRType translates a descriptor to its IR type.
//
// void maps to the IR void type, bool to i1, integers to iN strictly by
// physical byte width (signedness is not an IR property), float/double to
// the IR single/double types, and enums to their underlying integer's IR
// type. Pointers and references both become real IR pointers; a struct or
// void pointee becomes the opaque byte type i8 at that level only.
func (t *Translator) IRType(d *Desc) types.Type {
	switch d.Kind {
	case KindVoid:
		return types.Void
	case KindBool:
		return types.I1
	case KindSignedInt, KindUnsignedInt:
		return intType(d.Width)
	case KindFloat:
		return types.Float
	case KindDouble:
		return types.Double
	case KindEnum:
		return t.IRType(d.Elem)
	case KindPointer, KindReference:
		return t.pointerTo(t.pointeeType(d.Elem))
	case KindStruct:
		// Bare struct values never cross the IR boundary; a struct
		// descriptor stands for one opaque byte so that pointer
		// formation lands on i8*.
		return types.I8
	case KindFunc:
		return t.FuncType(d.Ret, d.Params...)
	default:
		panic(fmt.Sprintf("nativetype: unknown descriptor kind %d", d.Kind))
	}
}

// FuncType translates a return descriptor plus ordered parameter descriptors
// to an IR function type. Parameters may not be void.
func (t *Translator) FuncType(ret *Desc, params ...*Desc) *types.FuncType {
	irParams := make([]types.Type, len(params))
	for i, p := range params {
		if p.Kind == KindVoid {
			panic(fmt.Sprintf("nativetype: void is not a valid parameter type (parameter %d)", i))
		}
		irParams[i] = t.IRType(p)
	}
	return types.NewFunc(t.IRType(ret), irParams...)
}

// AnnotatedType translates a descriptor and records the host properties the
// IR type discards.
func (t *Translator) AnnotatedType(d *Desc) Annotated {
	scalar := d.Scalar()
	depth := d.IndirectionDepth()

	at := Annotated{
		IRType:      t.IRType(d),
		IsVoidPtr:   depth > 0 && (scalar.Kind == KindVoid || scalar.Kind == KindStruct),
		IsReference: d.Kind == KindReference,
		IsConst:     make([]bool, depth+1),
		IsVolatile:  make([]bool, depth+1),
	}

	signedness := scalar
	if scalar.Kind == KindEnum {
		signedness = scalar.Elem
	}
	at.ExplicitlyUnsigned = signedness.Kind == KindUnsignedInt
	at.IsLong = signedness.Long
	at.IsLongLong = signedness.LongLong

	// Fill qualifier levels innermost-first. A reference is necessarily
	// the outermost level and can never carry cv-qualifiers itself.
	level := depth
	for cur := d; ; cur = cur.Elem {
		if cur.Kind == KindReference {
			at.IsConst[level] = false
			at.IsVolatile[level] = false
		} else {
			at.IsConst[level] = cur.Const
			at.IsVolatile[level] = cur.Volatile
		}
		if cur.Kind != KindPointer && cur.Kind != KindReference {
			break
		}
		level--
	}
	return at
}

// pointeeType translates one pointee level. Struct and void pointees become
// the opaque byte type; everything else translates normally, so multi-level
// indirection keeps real pointer structure (e.g. **int32 is i32**) while
// struct layout stays hidden at every depth (**T is i8** for struct T).
func (t *Translator) pointeeType(elem *Desc) types.Type {
	switch elem.Kind {
	case KindVoid, KindStruct:
		return types.I8
	default:
		return t.IRType(elem)
	}
}

func (t *Translator) pointerTo(elem types.Type) *types.PointerType {
	if p, ok := t.ptrs[elem]; ok {
		return p
	}
	p := types.NewPointer(elem)
	t.ptrs[elem] = p
	return p
}

// intType returns the interned IR integer type for a byte width. The common
// widths are the llir package singletons, which gives interning for free.
func intType(width int) *types.IntType {
	switch width {
	case 1:
		return types.I8
	case 2:
		return types.I16
	case 4:
		return types.I32
	case 8:
		return types.I64
	default:
		panic(fmt.Sprintf("nativetype: unsupported integer byte width %d", width))
	}
}
