package nativetype

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a type descriptor.
type Kind uint8

const (
	// KindVoid is the C void type.
	KindVoid Kind = iota

	// KindBool is the C++ bool type (1-bit integer in IR).
	KindBool

	// KindSignedInt is a signed built-in integer of some byte width.
	KindSignedInt

	// KindUnsignedInt is an unsigned built-in integer of some byte width.
	KindUnsignedInt

	// KindFloat is the 32-bit IEEE 754 floating-point type.
	KindFloat

	// KindDouble is the 64-bit IEEE 754 floating-point type.
	KindDouble

	// KindEnum is an enumeration represented as its underlying integer.
	KindEnum

	// KindPointer is one level of pointer indirection.
	KindPointer

	// KindReference is one level of reference indirection. References do
	// not exist in IR; they translate exactly like pointers and are
	// distinguished only in the annotation.
	KindReference

	// KindStruct is a user-defined struct or class type. Its layout is
	// opaque to the IR layer.
	KindStruct

	// KindFunc is a function type (return plus ordered parameters).
	KindFunc
)

// Desc is a closed tagged-variant type descriptor. Callers construct
// descriptors with the constructor functions below; the zero value is not a
// valid descriptor.
//
// Const and Volatile qualify this level of the descriptor. For a pointer
// chain like "const int *volatile", the const flag sits on the innermost
// int descriptor and the volatile flag on the pointer descriptor.
type Desc struct {
	Kind Kind

	// Width is the physical byte width for the integer kinds.
	Width int

	// Long and LongLong record whether an integer descriptor was declared
	// with the C "long" or "long long" keywords. The physical width alone
	// does not determine this: on LP64 platforms long, long long and
	// int64_t all occupy 8 bytes but follow different foreign-call
	// conventions on some ABIs.
	Long     bool
	LongLong bool

	// Const and Volatile qualify this indirection level.
	Const    bool
	Volatile bool

	// Elem is the pointee for pointer/reference kinds and the underlying
	// integer for enum kinds.
	Elem *Desc

	// Name tags struct and enum descriptors for diagnostics.
	Name string

	// Ret and Params describe function kinds.
	Ret    *Desc
	Params []*Desc
}

// Void returns the void descriptor.
func Void() *Desc { return &Desc{Kind: KindVoid} }

// Bool returns the bool descriptor.
func Bool() *Desc { return &Desc{Kind: KindBool} }

// SignedInt returns a signed integer descriptor of the given byte width.
func SignedInt(width int) *Desc { return &Desc{Kind: KindSignedInt, Width: width} }

// UnsignedInt returns an unsigned integer descriptor of the given byte width.
func UnsignedInt(width int) *Desc { return &Desc{Kind: KindUnsignedInt, Width: width} }

// Fixed-width integer aliases.
func Int8() *Desc   { return SignedInt(1) }
func Int16() *Desc  { return SignedInt(2) }
func Int32() *Desc  { return SignedInt(4) }
func Int64() *Desc  { return SignedInt(8) }
func UInt8() *Desc  { return UnsignedInt(1) }
func UInt16() *Desc { return UnsignedInt(2) }
func UInt32() *Desc { return UnsignedInt(4) }
func UInt64() *Desc { return UnsignedInt(8) }

// C built-in integer flavors (LP64 model).
func Char() *Desc  { return SignedInt(1) }
func Short() *Desc { return SignedInt(2) }
func Int() *Desc   { return SignedInt(4) }

// Long returns the C "long" descriptor: 8 bytes on LP64, flagged long so
// foreign calls can match the platform calling convention.
func Long() *Desc { return &Desc{Kind: KindSignedInt, Width: 8, Long: true} }

// LongLong returns the C "long long" descriptor.
func LongLong() *Desc { return &Desc{Kind: KindSignedInt, Width: 8, LongLong: true} }

func UChar() *Desc     { return UnsignedInt(1) }
func UShort() *Desc    { return UnsignedInt(2) }
func UInt() *Desc      { return UnsignedInt(4) }
func ULong() *Desc     { return &Desc{Kind: KindUnsignedInt, Width: 8, Long: true} }
func ULongLong() *Desc { return &Desc{Kind: KindUnsignedInt, Width: 8, LongLong: true} }

// SizeT and PtrdiffT mirror the cstddef typedefs on LP64.
func SizeT() *Desc    { return UnsignedInt(8) }
func PtrdiffT() *Desc { return SignedInt(8) }
func UintptrT() *Desc { return UnsignedInt(8) }

// Float returns the 32-bit floating-point descriptor.
func Float() *Desc { return &Desc{Kind: KindFloat} }

// Double returns the 64-bit floating-point descriptor.
func Double() *Desc { return &Desc{Kind: KindDouble} }

// Enum returns an enum descriptor with the given underlying integer
// representation. The underlying descriptor must be an integer kind.
func Enum(name string, underlying *Desc) *Desc {
	switch underlying.Kind {
	case KindSignedInt, KindUnsignedInt:
	default:
		panic(fmt.Sprintf("nativetype: enum %q underlying descriptor must be an integer kind, got %v",
			name, underlying.Kind))
	}
	return &Desc{Kind: KindEnum, Name: name, Elem: underlying}
}

// Struct returns an opaque struct descriptor. Only the name is recorded;
// layout stays on the host side.
func Struct(name string) *Desc { return &Desc{Kind: KindStruct, Name: name} }

// PointerTo returns a pointer descriptor with the given pointee.
func PointerTo(elem *Desc) *Desc { return &Desc{Kind: KindPointer, Elem: elem} }

// ReferenceTo returns a reference descriptor with the given referent.
// References are always outermost; a pointer to a reference is not a valid
// host type and is rejected.
func ReferenceTo(elem *Desc) *Desc {
	if elem.Kind == KindReference {
		panic("nativetype: reference to reference is not a valid host type")
	}
	return &Desc{Kind: KindReference, Elem: elem}
}

// FuncOf returns a function descriptor with the given return and ordered
// parameter descriptors.
func FuncOf(ret *Desc, params ...*Desc) *Desc {
	return &Desc{Kind: KindFunc, Ret: ret, Params: params}
}

// WithConst returns a copy of d with the const qualifier set on this level.
func (d *Desc) WithConst() *Desc {
	c := *d
	c.Const = true
	return &c
}

// WithVolatile returns a copy of d with the volatile qualifier set on this
// level.
func (d *Desc) WithVolatile() *Desc {
	c := *d
	c.Volatile = true
	return &c
}

// IndirectionDepth counts the pointer/reference levels of d.
func (d *Desc) IndirectionDepth() int {
	depth := 0
	for cur := d; cur.Kind == KindPointer || cur.Kind == KindReference; cur = cur.Elem {
		depth++
	}
	return depth
}

// Scalar strips every pointer and reference level and returns the innermost
// descriptor.
func (d *Desc) Scalar() *Desc {
	cur := d
	for cur.Kind == KindPointer || cur.Kind == KindReference {
		cur = cur.Elem
	}
	return cur
}

// String renders a C-flavored spelling of the descriptor for diagnostics.
func (d *Desc) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *Desc) write(b *strings.Builder) {
	if d.Const {
		b.WriteString("const ")
	}
	if d.Volatile {
		b.WriteString("volatile ")
	}
	switch d.Kind {
	case KindVoid:
		b.WriteString("void")
	case KindBool:
		b.WriteString("bool")
	case KindSignedInt:
		fmt.Fprintf(b, "int%d", d.Width*8)
	case KindUnsignedInt:
		fmt.Fprintf(b, "uint%d", d.Width*8)
	case KindFloat:
		b.WriteString("float")
	case KindDouble:
		b.WriteString("double")
	case KindEnum:
		fmt.Fprintf(b, "enum %s", d.Name)
	case KindPointer:
		d.Elem.write(b)
		b.WriteString("*")
	case KindReference:
		d.Elem.write(b)
		b.WriteString("&")
	case KindStruct:
		fmt.Fprintf(b, "struct %s", d.Name)
	case KindFunc:
		d.Ret.write(b)
		b.WriteString(" (")
		for i, p := range d.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			p.write(b)
		}
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<kind %d>", d.Kind)
	}
}
