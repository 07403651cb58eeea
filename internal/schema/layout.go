package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// Field is one named member of a layout. Exactly one of Type and Nested is
// set: scalar and pointer members carry a type descriptor, embedded struct
// members carry their own layout.
type Field struct {
	Name   string
	Offset int64
	Type   *nativetype.Desc
	Nested *Layout
}

// Layout is an ordered list of named members with byte offsets.
type Layout struct {
	Name   string
	Fields []Field
}

// Field looks up a direct member by name.
func (l *Layout) Field(name string) (*Field, bool) {
	for i := range l.Fields {
		if l.Fields[i].Name == name {
			return &l.Fields[i], true
		}
	}
	return nil, false
}

// Member is a resolved path through a layout: the offset chain to follow
// and the type of the member at its end.
type Member struct {
	Offsets []int64
	Type    *nativetype.Desc
}

// Resolve walks a dotted member path down the layout. Each step before the
// last must name an embedded struct member; the last must name a scalar or
// pointer member.
func (l *Layout) Resolve(path string) (*Member, error) {
	parts := strings.Split(path, ".")
	m := &Member{Offsets: make([]int64, 0, len(parts))}
	cur := l
	for i, part := range parts {
		f, ok := cur.Field(part)
		if !ok {
			return nil, fmt.Errorf("schema: %s has no member %q (resolving %q)", cur.Name, part, path)
		}
		m.Offsets = append(m.Offsets, f.Offset)
		if i == len(parts)-1 {
			if f.Type == nil {
				return nil, fmt.Errorf("schema: %q names the embedded struct %s, not a loadable member", path, f.Nested.Name)
			}
			m.Type = f.Type
			return m, nil
		}
		if f.Nested == nil {
			return nil, fmt.Errorf("schema: %q descends into the scalar member %s.%s", path, cur.Name, part)
		}
		cur = f.Nested
	}
	return nil, fmt.Errorf("schema: empty member path")
}

// FromGoStruct derives the layout of a Go struct type, nesting into
// embedded struct members. Members whose types have no scalar or pointer
// representation are rejected.
func FromGoStruct(rt reflect.Type) (*Layout, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct type", rt)
	}
	l := &Layout{Name: rt.Name(), Fields: make([]Field, 0, rt.NumField())}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		f := Field{Name: sf.Name, Offset: int64(sf.Offset)}
		if sf.Type.Kind() == reflect.Struct {
			nested, err := FromGoStruct(sf.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: member %s.%s: %w", rt.Name(), sf.Name, err)
			}
			f.Nested = nested
		} else {
			d, err := nativetype.FromGoType(sf.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: member %s.%s: %w", rt.Name(), sf.Name, err)
			}
			f.Type = d
		}
		l.Fields = append(l.Fields, f)
	}
	return l, nil
}
