// Package waldesc renders human-readable summaries of append-only storage
// and distributed-log WAL records for log inspection tooling.
package waldesc

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Record info codes, stored in the high bits of the record header.
const (
	AppendOnlyInsert   uint8 = 0x00
	AppendOnlyTruncate uint8 = 0x10

	DistributedLogZeroPage uint8 = 0x00
	DistributedLogTruncate uint8 = 0x10
)

// infoMask strips the flag bits the record manager reserves for itself.
const infoMask uint8 = 0x0F

// RelFileNode locates a relation on disk.
type RelFileNode struct {
	SpcNode uint32
	DBNode  uint32
	RelNode uint32
}

// AppendOnlyTarget identifies a position inside one segment file of an
// append-only relation.
type AppendOnlyTarget struct {
	Node           RelFileNode
	SegmentFileNum uint32
	Offset         int64
}

// AppendOnly describes an append-only storage record.
func AppendOnly(buf *strings.Builder, info uint8, target AppendOnlyTarget) {
	switch info &^ infoMask {
	case AppendOnlyInsert:
		fmt.Fprintf(buf, "insert: rel %d/%d/%d seg/offset:%d/%d len:%d",
			target.Node.SpcNode, target.Node.DBNode, target.Node.RelNode,
			target.SegmentFileNum, target.Offset, 0)
	case AppendOnlyTruncate:
		fmt.Fprintf(buf, "truncate: rel %d/%d/%d seg/offset:%d/%d",
			target.Node.SpcNode, target.Node.DBNode, target.Node.RelNode,
			target.SegmentFileNum, target.Offset)
	default:
		buf.WriteString("UNKNOWN")
	}
}

// DistributedLog describes a distributed-log record whose payload is a
// little-endian page number.
func DistributedLog(buf *strings.Builder, info uint8, rec []byte) {
	if len(rec) < 4 {
		buf.WriteString("UNKNOWN")
		return
	}
	page := int32(binary.LittleEndian.Uint32(rec))
	switch info &^ infoMask {
	case DistributedLogZeroPage:
		fmt.Fprintf(buf, "zeropage: %d", page)
	case DistributedLogTruncate:
		fmt.Fprintf(buf, "truncate before: %d", page)
	default:
		buf.WriteString("UNKNOWN")
	}
}
