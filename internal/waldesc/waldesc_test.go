package waldesc

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendOnlyInsert(t *testing.T) {
	var buf strings.Builder
	AppendOnly(&buf, AppendOnlyInsert, AppendOnlyTarget{
		Node:           RelFileNode{SpcNode: 1663, DBNode: 16384, RelNode: 16385},
		SegmentFileNum: 129,
		Offset:         8192,
	})
	assert.Equal(t, "insert: rel 1663/16384/16385 seg/offset:129/8192 len:0", buf.String())
}

func TestAppendOnlyTruncate(t *testing.T) {
	var buf strings.Builder
	AppendOnly(&buf, AppendOnlyTruncate, AppendOnlyTarget{
		Node:           RelFileNode{SpcNode: 1663, DBNode: 16384, RelNode: 16385},
		SegmentFileNum: 2,
		Offset:         -1,
	})
	assert.Equal(t, "truncate: rel 1663/16384/16385 seg/offset:2/-1", buf.String())
}

func TestAppendOnlyIgnoresFlagBits(t *testing.T) {
	var buf strings.Builder
	AppendOnly(&buf, AppendOnlyTruncate|0x0F, AppendOnlyTarget{})
	assert.True(t, strings.HasPrefix(buf.String(), "truncate:"))
}

func TestAppendOnlyUnknown(t *testing.T) {
	var buf strings.Builder
	AppendOnly(&buf, 0x20, AppendOnlyTarget{})
	assert.Equal(t, "UNKNOWN", buf.String())
}

func TestDistributedLog(t *testing.T) {
	rec := make([]byte, 4)
	binary.LittleEndian.PutUint32(rec, 42)

	var buf strings.Builder
	DistributedLog(&buf, DistributedLogZeroPage, rec)
	assert.Equal(t, "zeropage: 42", buf.String())

	buf.Reset()
	DistributedLog(&buf, DistributedLogTruncate, rec)
	assert.Equal(t, "truncate before: 42", buf.String())
}

func TestDistributedLogShortRecord(t *testing.T) {
	var buf strings.Builder
	DistributedLog(&buf, DistributedLogZeroPage, []byte{1, 2})
	assert.Equal(t, "UNKNOWN", buf.String())
}
