package disasm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/consts"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/program"
)

// Listing returns the range as offsets of an assembly listing. Committed
// instructions become code with the names of their targets substituted,
// all other bytes are data. Instructions that contain a label or section
// start after their first byte are listed as data.
func (db *Database) Listing(start address.Address, length int) (program.Listing, error) {
	if err := db.validate(start); err != nil {
		return program.Listing{}, err
	}
	end := min(int(start.Offset)+length, start.Space.BankSize())
	l := program.Listing{
		Checksums: program.Checksums{ROM: db.deps.Checksum},
		Start:     start,
		Aliases:   make(map[string]uint16),
	}
	rng := span{start: start, length: end - int(start.Offset)}

	for offset := int(start.Offset); offset < end; {
		addr := address.New(start.Space, start.Bank, uint16(offset))
		o := program.Offset{Address: addr, Section: db.sections[addr], Comment: db.comments[addr]}
		if lbl, ok := db.labels.At(addr); ok {
			o.Label = lbl.Name
		}

		size, err := db.listElement(&o, rng, l.Aliases)
		if err != nil {
			return program.Listing{}, err
		}
		l.Offsets = append(l.Offsets, o)
		offset += size
	}
	return l, nil
}

func (db *Database) listElement(o *program.Offset, rng span, aliases map[string]uint16) (int, error) {
	addr := o.Address
	if b, ok := db.blocks[addr]; ok {
		desc := fmt.Sprintf("%s data, %d bytes", b.Kind, b.Size())
		if b.Result.Description != "" {
			desc += ", " + b.Result.Description
		}
		o.Comment = joinComment(desc, o.Comment)
	}

	if _, ok := db.code[addr]; ok {
		ins, err := db.Decode(addr)
		if err != nil {
			return 0, err
		}
		if ins.Target == nil && ins.Register != "" {
			o.Comment = joinComment(ins.Register, o.Comment)
		}

		if !db.boundaryInside(addr, ins.Length) {
			o.SetType(program.CodeOffset)
			o.Data = ins.Opcode
			o.Code = db.namedOperands(ins, rng, aliases)
			return ins.Length, nil
		}
		o.SetType(program.CodeAsData)
		o.Comment = joinComment(ins.String(), o.Comment)
	}

	raw, err := memory.Read(db.deps.Source, addr, 1)
	if err != nil {
		return 0, fmt.Errorf("reading listing data: %w", err)
	}
	o.SetType(program.DataOffset)
	o.Data = raw
	return 1, nil
}

// boundaryInside returns whether a label or section starts after the first
// byte of the range.
func (db *Database) boundaryInside(start address.Address, length int) bool {
	for i := 1; i < length; i++ {
		a, ok := start.Add(i)
		if !ok {
			return false
		}
		if _, ok := db.labels.At(a); ok {
			return true
		}
		if _, ok := db.sections[a]; ok {
			return true
		}
	}
	return false
}

// namedOperands returns the instruction text with the target operand
// replaced by the name of the target. Names defined outside of the listed
// range are added to the aliases.
func (db *Database) namedOperands(ins instruction.Instruction, rng span, aliases map[string]uint16) string {
	t := ins.Target
	if t == nil || !t.Resolved {
		return ins.String()
	}

	name, ok := db.targetName(t, rng, aliases)
	if !ok {
		return ins.String()
	}

	ins.Operands = slices.Clone(ins.Operands)
	for i, op := range ins.Operands {
		switch op.Kind {
		case instruction.Absolute, instruction.Relative, instruction.IOAbsolute, instruction.Immediate16:
		default:
			continue
		}
		if op.Value != t.CPU {
			continue
		}
		if strings.HasPrefix(op.Text, "[") {
			op.Text = "[" + name + "]"
		} else {
			op.Text = name
		}
		ins.Operands[i] = op
	}
	return ins.String()
}

func (db *Database) targetName(t *instruction.Target, rng span, aliases map[string]uint16) (string, bool) {
	lbl, ok := db.labels.At(t.Address)
	switch {
	case ok && rng.contains(t.Address):
		return lbl.Name, true

	case ok && !lbl.IsLocal():
		aliases[lbl.Name] = t.CPU
		return lbl.Name, true

	case ok:
		// locals of other ranges can not be aliased
		return "", false
	}

	if c, ok := consts.Register(t.CPU); ok {
		aliases[c.Name] = c.Address
		return c.Name, true
	}
	return "", false
}

func joinComment(comment, existing string) string {
	if existing == "" {
		return comment
	}
	return comment + "  " + existing
}
