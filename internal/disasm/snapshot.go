package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/program"
)

// Snapshot returns all user decisions in deterministic order.
func (db *Database) Snapshot() program.Program {
	p := program.Program{
		Checksums: program.Checksums{ROM: db.deps.Checksum},
		Context:   db.context.Entries(),
		Labels:    db.labels.Labels(),
		Xrefs:     db.xrefs.All(),
		Code:      db.Code(),
		Comments:  db.Comments(),
		Sections:  db.Sections(),
	}
	for _, b := range db.Blocks() {
		p.Blocks = append(p.Blocks, program.Block{
			Address: b.Address,
			Kind:    b.Kind,
			Length:  b.Length,
			Spec:    b.Spec,
		})
	}
	for s := range db.freed {
		p.Freed = append(p.Freed, program.Range{Address: s.start, Length: s.length})
	}
	slices.SortFunc(p.Freed, func(a, b program.Range) int {
		if c := a.Address.Compare(b.Address); c != 0 {
			return c
		}
		return a.Length - b.Length
	})
	return p
}

// Restore replaces the state of the database with the snapshot. The snapshot
// is applied to an empty database first, if any part of it is invalid the
// current state is kept.
func (db *Database) Restore(p program.Program) error {
	if p.Checksums.ROM != db.deps.Checksum {
		return fmt.Errorf("%w: snapshot is for ROM %08X but %08X is loaded",
			ErrChecksumMismatch, p.Checksums.ROM, db.deps.Checksum)
	}

	fresh := New(db.deps)
	if err := fresh.apply(p); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	db.context = fresh.context
	db.labels = fresh.labels
	db.xrefs = fresh.xrefs
	db.blocks = fresh.blocks
	db.code = fresh.code
	db.extents = fresh.extents
	db.freed = fresh.freed
	db.comments = fresh.comments
	db.sections = fresh.sections
	return nil
}

func (db *Database) apply(p program.Program) error {
	for _, e := range p.Context {
		if err := db.applyContext(e); err != nil {
			return fmt.Errorf("context entry at %s: %w", e.Start, err)
		}
	}
	for _, b := range p.Blocks {
		if _, err := db.CreateBlock(b.Kind, b.Address, b.Length, b.Spec); err != nil {
			return err
		}
	}
	for _, a := range p.Code {
		if _, err := db.CommitCode(a); err != nil {
			return err
		}
	}

	// labels are sorted by address, a global label always precedes its locals
	for _, lbl := range p.Labels {
		if _, err := db.CreateLabel(lbl.Name, lbl.Address); err != nil {
			return err
		}
	}
	for _, x := range p.Xrefs {
		if _, err := db.DeclareXref(x); err != nil {
			return fmt.Errorf("reference %s: %w", x, err)
		}
	}
	for _, c := range p.Comments {
		if err := db.SetComment(c.Address, c.Text); err != nil {
			return fmt.Errorf("comment at %s: %w", c.Address, err)
		}
	}
	for _, s := range p.Sections {
		if _, err := db.CreateSection(s.Name, s.Address); err != nil {
			return fmt.Errorf("section at %s: %w", s.Address, err)
		}
	}
	for _, r := range p.Freed {
		if err := db.addFreed(r); err != nil {
			return fmt.Errorf("freed range at %s: %w", r.Address, err)
		}
	}
	return nil
}

// addFreed records a range of a deleted data block.
func (db *Database) addFreed(r program.Range) error {
	if err := db.validate(r.Address); err != nil {
		return err
	}
	if r.Length < 1 || int(r.Address.Offset)+r.Length > r.Address.Space.BankSize() {
		return fmt.Errorf("invalid length %d", r.Length)
	}
	db.freed.Add(span{start: r.Address, length: r.Length})
	return nil
}

func (db *Database) applyContext(e overrides.Entry) error {
	switch e.Kind {
	case overrides.Bank:
		return db.SetBank(e.Start, e.Bank, e.Length)
	case overrides.Scalar:
		return db.SetScalar(e.Start, e.Length)
	default:
		return fmt.Errorf("unknown context kind %d", int(e.Kind))
	}
}
