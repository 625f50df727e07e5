package sm83

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/consts"
	"github.com/retroenv/gbdisasm/internal/instruction"
)

// ErrIllegalOpcode is returned for opcodes that the CPU does not implement
// and for instructions that are cut off by the end of the available bytes.
var ErrIllegalOpcode = errors.New("illegal opcode")

// MaxLength is the maximum byte length of an instruction.
const MaxLength = 3

// Resolver resolves reference targets using the context of the instruction
// at origin.
type Resolver interface {
	ResolveTarget(origin address.Address, cpu uint16) (address.Address, error)
	Scalar(origin address.Address) bool
}

// Lookup returns the opcode table entry for the given bytes.
func Lookup(raw []byte) (*Opcode, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrIllegalOpcode)
	}
	if raw[0] == prefix {
		if len(raw) < 2 {
			return nil, fmt.Errorf("%w: truncated prefixed instruction", ErrIllegalOpcode)
		}
		return PrefixedOpcodes[raw[1]], nil
	}

	op := Opcodes[raw[0]]
	if op == nil {
		return nil, fmt.Errorf("%w: $%02X", ErrIllegalOpcode, raw[0])
	}
	if len(raw) < op.Size {
		return nil, fmt.Errorf("%w: truncated %s instruction", ErrIllegalOpcode, op.Name)
	}
	return op, nil
}

// Decode decodes the instruction at origin from raw, which has to contain at
// least the bytes of the instruction. The resolver can be nil, in which case
// no target is resolved.
func Decode(origin address.Address, raw []byte, resolver Resolver) (instruction.Instruction, error) {
	op, err := Lookup(raw)
	if err != nil {
		return instruction.Instruction{}, err
	}

	ins := instruction.Instruction{
		Address:     origin,
		Opcode:      append([]byte(nil), raw[:op.Size]...),
		Name:        op.Name,
		Length:      op.Size,
		Flow:        op.Flow,
		Conditional: op.Conditional,
		Access:      op.Access,
		Operands:    make([]instruction.Operand, 0, len(op.operands)),
	}

	params := raw[1:op.Size]
	if raw[0] == prefix {
		params = nil
	}
	next := origin.CPU() + uint16(op.Size)

	var target uint16
	hasTarget := false
	for _, o := range op.operands {
		operand, cpu, isRef := decodeOperand(o, params, next)
		ins.Operands = append(ins.Operands, operand)
		if isRef {
			target, hasTarget = cpu, true
		}
	}

	if hasTarget {
		setTarget(&ins, target, resolver)
	}
	return ins, nil
}

// decodeOperand returns the decoded operand and, for operands that refer to
// memory, the CPU address they refer to.
func decodeOperand(o operand, params []byte, next uint16) (instruction.Operand, uint16, bool) {
	result := instruction.Operand{Kind: o.kind, Text: o.text, Value: o.value}

	switch o.typ {
	case opN8:
		result.Value = uint16(params[0])
		result.Text = fmt.Sprintf("$%02X", params[0])

	case opN16, opA16, opMem16:
		result.Value = uint16(params[0]) | uint16(params[1])<<8
		result.Text = fmt.Sprintf("$%04X", result.Value)
		if o.typ == opMem16 {
			result.Text = "[" + result.Text + "]"
		}
		return result, result.Value, true

	case opRel:
		result.Value = next + uint16(int8(params[0]))
		result.Text = fmt.Sprintf("$%04X", result.Value)
		return result, result.Value, true

	case opIO8:
		result.Value = 0xFF00 | uint16(params[0])
		result.Text = fmt.Sprintf("[$%04X]", result.Value)
		return result, result.Value, true

	case opSPE8:
		result.Value = uint16(params[0])
		result.Text = "sp" + signedHex(int8(params[0]), true)

	case opE8:
		result.Value = uint16(params[0])
		result.Text = signedHex(int8(params[0]), false)

	case opVector:
		result.Text = fmt.Sprintf("$%02X", o.value)
		return result, o.value, true

	case opBit:
		result.Text = fmt.Sprintf("%d", o.value)
	}

	return result, 0, false
}

func setTarget(ins *instruction.Instruction, cpu uint16, resolver Resolver) {
	if resolver != nil && resolver.Scalar(ins.Address) {
		return
	}

	if ins.Access == instruction.Write && cpu < address.VRAM.Start() {
		if c, ok := consts.MBCRegister(cpu); ok {
			ins.Register = c.Name
			return
		}
	}
	if c, ok := consts.Register(cpu); ok {
		ins.Register = c.Name
	}

	ins.Target = &instruction.Target{CPU: cpu}
	if resolver == nil {
		return
	}
	if a, err := resolver.ResolveTarget(ins.Address, cpu); err == nil {
		ins.Target.Address = a
		ins.Target.Resolved = true
	}
}

func signedHex(v int8, plus bool) string {
	if v < 0 {
		return fmt.Sprintf("-$%02X", -int(v))
	}
	if plus {
		return fmt.Sprintf("+$%02X", v)
	}
	return fmt.Sprintf("$%02X", v)
}
