package disasm

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/xref"
)

// Element is everything the database knows about an address.
type Element struct {
	Offset program.Offset

	Block       *Block                   // data block containing the address
	Instruction *instruction.Instruction // committed or previewed instruction
	Committed   bool                     // instruction is classified as code
	Label       *symbols.Label
	Scope       string // global label in scope
	Comment     string

	From    []xref.Xref
	To      []xref.Xref
	Context []overrides.Entry

	Findings []error // advisory, wrapping ErrDanglingReference
}

// Inspect returns the element at the address. Unclassified bytes are
// previewed as instruction if they decode.
func (db *Database) Inspect(addr address.Address) (Element, error) {
	if err := db.validate(addr); err != nil {
		return Element{}, err
	}

	el := Element{
		Offset:  program.Offset{Address: addr, Section: db.sections[addr]},
		From:    db.xrefs.From(addr),
		To:      db.xrefs.To(addr),
		Context: db.context.At(addr),
	}

	if lbl, ok := db.labels.At(addr); ok {
		el.Label = &lbl
	}
	el.Comment = db.comments[addr]
	if scope, ok := db.labels.Scope(addr); ok {
		el.Scope = scope.Name
	}

	if err := db.classify(&el); err != nil {
		return Element{}, err
	}
	for _, x := range el.To {
		switch x.Kind {
		case xref.Call:
			el.Offset.SetType(program.CallDestination)
		case xref.Jump:
			el.Offset.SetType(program.JumpDestination)
		default:
			el.Offset.SetType(program.Accessed)
		}
	}

	el.Findings = db.danglingFindings(&el)
	return el, nil
}

func (db *Database) classify(el *Element) error {
	addr := el.Offset.Address

	if b, ok := db.BlockAt(addr); ok {
		el.Block = b
		el.Offset.SetType(program.DataOffset)
		if b.Address == addr {
			raw, err := memory.Read(db.deps.Source, addr, b.Size())
			if err != nil {
				return fmt.Errorf("reading block data: %w", err)
			}
			el.Offset.Data = raw
		}
		return nil
	}

	start, committed := db.CodeAt(addr)
	if !committed {
		start = addr
	}
	ins, err := db.Decode(start)
	if err != nil {
		if committed {
			return err
		}
		return nil // unclassified bytes that are no valid instruction
	}

	el.Instruction = &ins
	el.Committed = committed
	if !committed {
		return nil
	}
	el.Offset.SetType(program.CodeOffset)
	if start == addr {
		el.Offset.Data = ins.Opcode
	} else {
		el.Offset.SetType(program.CodeAsData)
	}
	return nil
}

// danglingFindings reports labels and references at addresses whose data
// block was deleted and that are not classified again, and references that
// point into the middle of a committed instruction.
func (db *Database) danglingFindings(el *Element) []error {
	addr := el.Offset.Address
	var findings []error

	if _, covered := db.extents.at(addr); !covered && db.inFreedRange(addr) {
		if el.Label != nil {
			findings = append(findings, fmt.Errorf("%w: label %s is in a deleted data block",
				ErrDanglingReference, el.Label.Name))
		}
		for _, x := range el.To {
			findings = append(findings, fmt.Errorf("%w: %s targets a deleted data block",
				ErrDanglingReference, x))
		}
		for _, x := range el.From {
			findings = append(findings, fmt.Errorf("%w: %s originates in a deleted data block",
				ErrDanglingReference, x))
		}
	}

	if el.Offset.IsType(program.CodeAsData) {
		for _, x := range el.To {
			findings = append(findings, fmt.Errorf("%w: %s targets the middle of an instruction",
				ErrDanglingReference, x))
		}
	}
	return findings
}

func (db *Database) inFreedRange(a address.Address) bool {
	for s := range db.freed {
		if s.contains(a) {
			return true
		}
	}
	return false
}
