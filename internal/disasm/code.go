package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/arch/sm83"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// Decode decodes the instruction at the address using the current context.
func (db *Database) Decode(addr address.Address) (instruction.Instruction, error) {
	if err := db.validate(addr); err != nil {
		return instruction.Instruction{}, err
	}
	raw, err := memory.Read(db.deps.Source, addr, sm83.MaxLength)
	if err != nil {
		return instruction.Instruction{}, fmt.Errorf("reading instruction: %w", err)
	}

	ins, err := sm83.Decode(addr, raw, db)
	if err != nil {
		return instruction.Instruction{}, fmt.Errorf("decoding %s: %w", addr, err)
	}
	return ins, nil
}

// CommitCode classifies the instruction at the address as code. Committing
// an already committed instruction again does nothing.
func (db *Database) CommitCode(addr address.Address) (instruction.Instruction, error) {
	ins, err := db.Decode(addr)
	if err != nil {
		return instruction.Instruction{}, err
	}

	s := span{start: addr, length: ins.Length}
	if x, ok := db.extents.overlapping(s); ok && x.code && x.span == s {
		return ins, nil
	}
	if err := db.checkFree(s); err != nil {
		return instruction.Instruction{}, err
	}

	db.code.Add(addr)
	db.extents.add(extent{span: s, code: true})
	db.logger.Debug("Committed code", log.Stringer("address", addr), log.String("instruction", ins.String()))
	return ins, nil
}

// ClearCode removes the code classification of the instruction starting at
// the address.
func (db *Database) ClearCode(addr address.Address) error {
	if _, ok := db.code[addr]; !ok {
		return fmt.Errorf("%w: no committed instruction starts at %s", address.ErrUnknownAddress, addr)
	}
	delete(db.code, addr)
	db.extents.remove(addr)
	return nil
}

// CodeAt returns the start address of the committed instruction that contains
// the address.
func (db *Database) CodeAt(a address.Address) (address.Address, bool) {
	x, ok := db.extents.at(a)
	if !ok || !x.code {
		return address.Address{}, false
	}
	return x.start, true
}

// Code returns the start addresses of all committed instructions sorted by
// address.
func (db *Database) Code() []address.Address {
	code := make([]address.Address, 0, len(db.code))
	for a := range db.code {
		code = append(code, a)
	}
	slices.SortFunc(code, address.Address.Compare)
	return code
}
