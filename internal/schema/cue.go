package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// ParseLayout parses a CUE value into a Layout.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the layout struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`heap_tuple: { fields: { t_len: {offset: 0, type: "uint32"} } }`)
//	layout, err := ParseLayout(v.LookupPath(cue.ParsePath("heap_tuple")))
//
// Each member needs an offset and either a scalar/pointer type string or a
// nested fields block.
func ParseLayout(v cue.Value) (*Layout, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	l := &Layout{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		l.Name = labels[len(labels)-1].String()
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &ParseError{
			Field:   "fields",
			Message: "fields block is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		f, err := parseField(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		l.Fields = append(l.Fields, *f)
	}
	if len(l.Fields) == 0 {
		return nil, &ParseError{
			Field:   "fields",
			Message: "at least one member is required",
			Pos:     fieldsVal.Pos(),
		}
	}
	return l, nil
}

func parseField(name string, v cue.Value) (*Field, error) {
	f := &Field{Name: name}

	offVal := v.LookupPath(cue.ParsePath("offset"))
	if !offVal.Exists() {
		return nil, &ParseError{
			Field:   name,
			Message: "offset is required",
			Pos:     v.Pos(),
		}
	}
	off, err := offVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if off < 0 {
		return nil, &ParseError{
			Field:   name,
			Message: fmt.Sprintf("offset %d is negative", off),
			Pos:     offVal.Pos(),
		}
	}
	f.Offset = off

	if nested := v.LookupPath(cue.ParsePath("fields")); nested.Exists() {
		inner, err := ParseLayout(v)
		if err != nil {
			return nil, err
		}
		inner.Name = name
		f.Nested = inner
		return f, nil
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &ParseError{
			Field:   name,
			Message: "either type or a nested fields block is required",
			Pos:     v.Pos(),
		}
	}
	spell, err := typeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	d, err := parseTypeSpelling(spell)
	if err != nil {
		return nil, &ParseError{
			Field:   name,
			Message: err.Error(),
			Pos:     typeVal.Pos(),
		}
	}
	f.Type = d
	return f, nil
}

// parseTypeSpelling maps a config type name to its descriptor. Pointer
// spellings nest: "*uint32" is a pointer to uint32, "*void" an untyped
// pointer and "*Name" a pointer to the opaque struct Name.
func parseTypeSpelling(s string) (*nativetype.Desc, error) {
	if rest, ok := strings.CutPrefix(s, "*"); ok {
		if rest == "void" {
			return nativetype.PointerTo(nativetype.Void()), nil
		}
		inner, err := parseTypeSpelling(rest)
		if err == nil {
			return nativetype.PointerTo(inner), nil
		}
		return nativetype.PointerTo(nativetype.Struct(rest)), nil
	}
	switch s {
	case "bool":
		return nativetype.Bool(), nil
	case "char":
		return nativetype.Char(), nil
	case "int8":
		return nativetype.Int8(), nil
	case "int16":
		return nativetype.Int16(), nil
	case "int32":
		return nativetype.Int32(), nil
	case "int64":
		return nativetype.Int64(), nil
	case "uint8":
		return nativetype.UInt8(), nil
	case "uint16":
		return nativetype.UInt16(), nil
	case "uint32":
		return nativetype.UInt32(), nil
	case "uint64":
		return nativetype.UInt64(), nil
	case "float":
		return nativetype.Float(), nil
	case "double":
		return nativetype.Double(), nil
	}
	return nil, fmt.Errorf("unknown member type %q", s)
}

// ParseError reports a malformed layout definition.
type ParseError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &ParseError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
