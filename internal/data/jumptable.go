package data

import (
	"encoding/binary"
	"fmt"
)

// jumpTableLayout is the row layout of a jump table.
var jumpTableLayout = Layout{
	Fields: []FieldSpec{{Name: "addr", Type: TypeAddr}},
	Width:  2,
}

// DetectJumpTableRows returns the number of little endian code pointers at
// the start of raw, which is located at the CPU address start.
//
// The table is assumed to end where the lowest pointer target behind the
// table start begins, as handlers commonly follow their table directly.
// A null pointer or one outside of ROM ends the table early.
func DetectJumpTableRows(raw []byte, start uint16) int {
	limit := 0x10000
	rows := 0
	for ; int(start)+2*rows < limit && 2*rows+1 < len(raw); rows++ {
		ptr := binary.LittleEndian.Uint16(raw[2*rows:])
		if ptr == 0x0000 || ptr >= 0x8000 {
			break
		}
		if ptr > start && int(ptr) < limit {
			limit = int(ptr)
		}
	}
	return rows
}

// DecodeJumpTable decodes a table of code pointers located at the CPU
// address start. With rows 0 the row count is detected.
func DecodeJumpTable(raw []byte, rows int, start uint16) (Result, error) {
	if rows == 0 {
		rows = DetectJumpTableRows(raw, start)
		if rows == 0 {
			return Result{}, fmt.Errorf("%w: no jump table entries found", ErrMalformedStructure)
		}
	}

	result, err := DecodeTable(raw, rows, jumpTableLayout)
	if err != nil {
		return Result{}, err
	}
	result.Kind = JumpTable
	return result, nil
}
