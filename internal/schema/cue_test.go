package schema

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

func compileLayout(t *testing.T, src, path string) (*Layout, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return ParseLayout(v.LookupPath(cue.ParsePath(path)))
}

const heapTupleCUE = `
heap_tuple: {
	fields: {
		t_len: {offset: 0, type: "uint32"}
		header: {
			offset: 8
			fields: {
				infomask: {offset: 0, type: "uint16"}
				hoff:     {offset: 2, type: "uint8"}
			}
		}
		t_data: {offset: 24, type: "*void"}
	}
}
`

func TestParseLayout(t *testing.T) {
	l, err := compileLayout(t, heapTupleCUE, "heap_tuple")
	require.NoError(t, err)
	assert.Equal(t, "heap_tuple", l.Name)
	require.Len(t, l.Fields, 3)

	tLen, ok := l.Field("t_len")
	require.True(t, ok)
	assert.Equal(t, int64(0), tLen.Offset)
	assert.Equal(t, nativetype.KindUnsignedInt, tLen.Type.Kind)

	data, ok := l.Field("t_data")
	require.True(t, ok)
	assert.Equal(t, nativetype.KindPointer, data.Type.Kind)
	assert.Equal(t, nativetype.KindVoid, data.Type.Elem.Kind)
}

func TestParseLayoutResolvesNestedChain(t *testing.T) {
	l, err := compileLayout(t, heapTupleCUE, "heap_tuple")
	require.NoError(t, err)

	m, err := l.Resolve("header.hoff")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 2}, m.Offsets)
	assert.Equal(t, 1, m.Type.Width)
}

func TestParseLayoutStructPointerSpelling(t *testing.T) {
	l, err := compileLayout(t, `
rel: {
	fields: {
		rd_node: {offset: 0, type: "*RelFileNode"}
	}
}
`, "rel")
	require.NoError(t, err)
	node, _ := l.Field("rd_node")
	assert.Equal(t, nativetype.KindPointer, node.Type.Kind)
	assert.Equal(t, nativetype.KindStruct, node.Type.Elem.Kind)
	assert.Equal(t, "RelFileNode", node.Type.Elem.Name)
}

func TestParseLayoutErrors(t *testing.T) {
	var perr *ParseError

	_, err := compileLayout(t, `x: {notfields: {}}`, "x")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "fields", perr.Field)

	_, err = compileLayout(t, `x: {fields: {a: {type: "uint32"}}}`, "x")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "offset is required")

	_, err = compileLayout(t, `x: {fields: {a: {offset: -4, type: "uint32"}}}`, "x")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "negative")

	_, err = compileLayout(t, `x: {fields: {a: {offset: 0, type: "quadword"}}}`, "x")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "unknown member type")

	_, err = compileLayout(t, `x: {fields: {a: {offset: 0}}}`, "x")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "either type or a nested fields block")
}
