package sm83

import "github.com/retroenv/gbdisasm/internal/instruction"

// prefix selects the prefixed opcode table.
const prefix = 0xCB

type operandType int

const (
	opText   operandType = iota // fixed register or condition text
	opN8                        // n8
	opN16                       // n16
	opRel                       // e8 relative jump offset
	opA16                       // n16 jump or call destination
	opMem16                     // [n16]
	opIO8                       // [$FF00+n8]
	opSPE8                      // sp+e8
	opE8                        // e8
	opVector                    // rst vector
	opBit                       // bit index
)

// size returns the number of parameter bytes of the operand.
func (t operandType) size() int {
	switch t {
	case opN8, opRel, opIO8, opSPE8, opE8:
		return 1
	case opN16, opA16, opMem16:
		return 2
	default:
		return 0
	}
}

type operand struct {
	typ   operandType
	kind  instruction.OperandKind
	text  string
	value uint16
}

// Opcode is an entry of an opcode table.
type Opcode struct {
	Name        string
	Size        int
	Flow        instruction.Flow
	Conditional bool
	Access      instruction.Access

	operands []operand
}

func newOpcode(name string, operands ...operand) *Opcode {
	o := &Opcode{Name: name, Size: 1, operands: operands}
	for _, op := range operands {
		o.Size += op.typ.size()
	}
	return o
}

func reg(text string) operand {
	return operand{typ: opText, kind: instruction.Register, text: text}
}

func cond(text string) operand {
	return operand{typ: opText, kind: instruction.Condition, text: text}
}

func vector(addr uint16) operand {
	return operand{typ: opVector, kind: instruction.Vector, value: addr}
}

func bit(n int) operand {
	return operand{typ: opBit, kind: instruction.Bit, value: uint16(n)}
}

var (
	n8    = operand{typ: opN8, kind: instruction.Immediate8}
	n16   = operand{typ: opN16, kind: instruction.Immediate16}
	rel   = operand{typ: opRel, kind: instruction.Relative}
	a16   = operand{typ: opA16, kind: instruction.Absolute}
	mem16 = operand{typ: opMem16, kind: instruction.Absolute}
	io8   = operand{typ: opIO8, kind: instruction.IOAbsolute}
	spE8  = operand{typ: opSPE8, kind: instruction.StackOffset}
	e8    = operand{typ: opE8, kind: instruction.Signed}
)

var (
	registers  = []string{"b", "c", "d", "e", "h", "l", "[hl]", "a"}
	pairs      = []string{"bc", "de", "hl", "sp"}
	stackPairs = []string{"bc", "de", "hl", "af"}
	indirect   = []string{"[bc]", "[de]", "[hl+]", "[hl-]"}
	conditions = []string{"nz", "z", "nc", "c"}
)

// Opcodes is the main opcode table, illegal opcodes and the prefix are nil.
var Opcodes = buildOpcodes()

// PrefixedOpcodes is the table of opcodes following the $CB prefix.
var PrefixedOpcodes = buildPrefixed()

//nolint:funlen // the table is built in opcode order
func buildOpcodes() [256]*Opcode {
	var t [256]*Opcode
	set := func(code int, name string, operands ...operand) *Opcode {
		o := newOpcode(name, operands...)
		t[code] = o
		return o
	}
	flow := func(o *Opcode, f instruction.Flow, conditional bool) {
		o.Flow = f
		o.Conditional = conditional
	}

	set(0x00, "nop")
	set(0x08, "ld", mem16, reg("sp")).Access = instruction.Write
	stop := set(0x10, "stop")
	stop.Size = 2
	stop.Flow = instruction.Halt
	flow(set(0x18, "jr", rel), instruction.Jump, false)

	for i, p := range pairs {
		base := i << 4
		set(base|0x01, "ld", reg(p), n16).Access = instruction.Read
		set(base|0x03, "inc", reg(p))
		set(base|0x09, "add", reg("hl"), reg(p))
		set(base|0x0B, "dec", reg(p))
	}
	for i, p := range indirect {
		base := i << 4
		set(base|0x02, "ld", reg(p), reg("a"))
		set(base|0x0A, "ld", reg("a"), reg(p))
	}
	for i, r := range registers {
		base := i << 3
		set(base|0x04, "inc", reg(r))
		set(base|0x05, "dec", reg(r))
		set(base|0x06, "ld", reg(r), n8)
	}
	for i, name := range []string{"rlca", "rrca", "rla", "rra", "daa", "cpl", "scf", "ccf"} {
		set(i<<3|0x07, name)
	}
	for i, c := range conditions {
		flow(set(0x20|i<<3, "jr", cond(c), rel), instruction.Jump, true)
	}

	for dst, d := range registers {
		for src, s := range registers {
			set(0x40|dst<<3|src, "ld", reg(d), reg(s))
		}
	}
	set(0x76, "halt").Flow = instruction.Halt

	for i, name := range []string{"add", "adc", "sub", "sbc", "and", "xor", "or", "cp"} {
		for src, s := range registers {
			set(0x80|i<<3|src, name, reg("a"), reg(s))
		}
		set(0xC6|i<<3, name, reg("a"), n8)
	}

	for i, c := range conditions {
		base := 0xC0 | i<<3
		flow(set(base, "ret", cond(c)), instruction.Return, true)
		flow(set(base|0x02, "jp", cond(c), a16), instruction.Jump, true)
		flow(set(base|0x04, "call", cond(c), a16), instruction.Call, true)
	}
	for i, p := range stackPairs {
		set(0xC1|i<<4, "pop", reg(p))
		set(0xC5|i<<4, "push", reg(p))
	}
	for i := range 8 {
		flow(set(0xC7|i<<3, "rst", vector(uint16(i*8))), instruction.Call, false)
	}

	flow(set(0xC3, "jp", a16), instruction.Jump, false)
	flow(set(0xC9, "ret"), instruction.Return, false)
	flow(set(0xCD, "call", a16), instruction.Call, false)
	flow(set(0xD9, "reti"), instruction.Return, false)
	flow(set(0xE9, "jp", reg("hl")), instruction.IndirectJump, false)

	set(0xE0, "ldh", io8, reg("a")).Access = instruction.Write
	set(0xF0, "ldh", reg("a"), io8).Access = instruction.Read
	set(0xE2, "ldh", reg("[c]"), reg("a"))
	set(0xF2, "ldh", reg("a"), reg("[c]"))
	set(0xEA, "ld", mem16, reg("a")).Access = instruction.Write
	set(0xFA, "ld", reg("a"), mem16).Access = instruction.Read
	set(0xE8, "add", reg("sp"), e8)
	set(0xF8, "ld", reg("hl"), spE8)
	set(0xF9, "ld", reg("sp"), reg("hl"))
	set(0xF3, "di")
	set(0xFB, "ei")

	return t
}

func buildPrefixed() [256]*Opcode {
	var t [256]*Opcode
	shifts := []string{"rlc", "rrc", "rl", "rr", "sla", "sra", "swap", "srl"}
	bits := []string{"bit", "res", "set"}

	for code := range 256 {
		op, r := code/8, registers[code%8]
		var o *Opcode
		if op < len(shifts) {
			o = newOpcode(shifts[op], reg(r))
		} else {
			op -= len(shifts)
			o = newOpcode(bits[op/8], bit(op%8), reg(r))
		}
		o.Size = 2
		t[code] = o
	}
	return t
}
