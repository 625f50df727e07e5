// Package instruction contains the fundamental types for decoded CPU instructions.
package instruction

import (
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
)

// Flow is the control flow behavior of an instruction.
type Flow int

// Control flow kinds.
const (
	Sequential Flow = iota
	Jump
	Call
	Return
	IndirectJump // jp hl, destination unknown
	Halt         // stop and halt
)

// Access is the memory access performed through an absolute operand.
type Access int

// Memory access kinds.
const (
	NoAccess Access = iota
	Read
	Write
)

// OperandKind is the encoding of an operand.
type OperandKind int

// Operand kinds.
const (
	Register    OperandKind = iota + 1 // a, bc, [hl], [hl+], [c]
	Condition                          // nz, z, nc, c
	Immediate8                         // n8
	Immediate16                        // n16
	Relative                           // e8 relative to the next instruction
	Absolute                           // n16 address, [n16] when dereferenced
	IOAbsolute                         // [$FF00+n8]
	StackOffset                        // sp+e8
	Signed                             // e8
	Vector                             // rst vector
	Bit                                // bit index of prefixed instructions
)

// Operand is a decoded operand.
type Operand struct {
	Kind  OperandKind
	Text  string
	Value uint16
}

// Target is the memory location an instruction refers to.
type Target struct {
	CPU      uint16
	Address  address.Address
	Resolved bool
}

// Instruction is a decoded instruction. Instructions are derived from raw
// bytes and context on demand and never stored.
type Instruction struct {
	Address     address.Address
	Opcode      []byte
	Name        string
	Operands    []Operand
	Length      int
	Flow        Flow
	Conditional bool
	Access      Access
	Target      *Target // nil if the instruction does not refer to memory
	Register    string  // name of the hardware register that is accessed
}

// IsCall returns true if the instruction is a call.
func (i Instruction) IsCall() bool {
	return i.Flow == Call
}

// IsJump returns true if the instruction is a direct jump.
func (i Instruction) IsJump() bool {
	return i.Flow == Jump
}

// IsReturn returns true if the instruction returns from a call.
func (i Instruction) IsReturn() bool {
	return i.Flow == Return
}

// EndsFlow returns true if execution does not continue with the next instruction.
func (i Instruction) EndsFlow() bool {
	if i.Conditional {
		return false
	}
	switch i.Flow {
	case Jump, Return, IndirectJump:
		return true
	default:
		return false
	}
}

// String returns the instruction in assembler syntax.
func (i Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Name
	}
	texts := make([]string, len(i.Operands))
	for j, op := range i.Operands {
		texts[j] = op.Text
	}
	return i.Name + " " + strings.Join(texts, ", ")
}
