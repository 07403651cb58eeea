// Package schema describes host struct layouts so generated code can
// address members by name instead of hand-carried byte offsets.
//
// A Layout comes from one of two sources:
//
//  1. FromGoStruct derives it from a Go struct type through reflection,
//     which is the right source when the host rows are Go values.
//  2. ParseLayout reads it from a CUE value, which is the right source
//     when the layout mirrors a foreign (C) struct whose offsets are
//     known but whose type does not exist in this process.
//
// Resolve walks a dotted member path ("header.natts") down the layout and
// returns the offset chain plus the member's type descriptor, exactly the
// two things codegen.PointerToMember needs.
package schema
