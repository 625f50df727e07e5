// Package disasm implements the disassembly database. It owns the context
// store, symbol table, xref graph, data blocks and committed code of a
// cartridge and validates every edit against all of them before applying it.
package disasm

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/xref"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrRangeConflict is returned when a data block or instruction overlaps
	// a committed element or a context entry conflicts with another one.
	ErrRangeConflict = errors.New("range conflict")
	// ErrDanglingReference marks labels and xrefs that refer to a location
	// whose classification was removed. It is only reported by Inspect.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrChecksumMismatch is returned when restoring a snapshot of another ROM.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Dependencies contains the dependencies of a database.
type Dependencies struct {
	Logger   *log.Logger
	Source   memory.Source
	Checksum uint32 // CRC32 of the ROM the source was loaded from
}

// Database is the single edit surface for all user decisions. It is not
// safe for concurrent mutation.
type Database struct {
	deps   Dependencies
	logger *log.Logger
	banks  *address.Map

	context *overrides.Store
	labels  *symbols.Table
	xrefs   *xref.Graph

	blocks  map[address.Address]*Block
	code    set.Set[address.Address] // start addresses of committed instructions
	extents extents
	freed   set.Set[span] // ranges of deleted blocks

	comments map[address.Address]string
	sections map[address.Address]string
}

// New returns a new empty database for the byte source.
func New(deps Dependencies) *Database {
	return &Database{
		deps:    deps,
		logger:  deps.Logger,
		banks:   memory.NewMap(deps.Source),
		context: overrides.New(),
		labels:  symbols.New(),
		xrefs:   xref.New(),
		blocks:  make(map[address.Address]*Block),
		code:    set.New[address.Address](),
		extents: make(extents),
		freed:   set.New[span](),

		comments: make(map[address.Address]string),
		sections: make(map[address.Address]string),
	}
}

// Banks returns the address map of the cartridge.
func (db *Database) Banks() *address.Map {
	return db.banks
}

// Source returns the byte source.
func (db *Database) Source() memory.Source {
	return db.deps.Source
}

// Checksum returns the checksum of the ROM.
func (db *Database) Checksum() uint32 {
	return db.deps.Checksum
}

// ResolveTarget resolves a CPU address that the instruction at origin refers
// to. An origin bank pin has precedence over a target range pin, followed by
// the bank of the origin for references between switched ROM locations.
func (db *Database) ResolveTarget(origin address.Address, cpu uint16) (address.Address, error) {
	if bank, ok := db.context.OriginBank(origin); ok {
		return db.banks.Resolve(cpu, bank)
	}

	a, err := db.banks.Resolve(cpu, address.NoBank)
	if !errors.Is(err, address.ErrAmbiguousBank) {
		return a, err
	}

	if bank, ok := db.context.TargetBank(a); ok {
		return db.banks.Resolve(cpu, bank)
	}
	if origin.Space == address.ROM && a.Space == address.ROM && origin.Bank > 0 {
		return db.banks.Resolve(cpu, origin.Bank)
	}
	return a, err
}

// Scalar returns whether the operands of the instruction at origin are plain
// values.
func (db *Database) Scalar(origin address.Address) bool {
	return db.context.Scalar(origin)
}

// validate checks that the address is resolved and exists on the cartridge.
func (db *Database) validate(a address.Address) error {
	return db.banks.Validate(a)
}

// SetBank pins a bank for the range. A resolved start address pins the
// operands of instructions in the range, an unresolved one pins references
// to the range.
func (db *Database) SetBank(start address.Address, bank, length int) error {
	if start.Resolved() {
		if err := db.validate(start); err != nil {
			return err
		}
	} else if _, err := db.banks.Resolve(start.CPU(), bank); err != nil {
		return err
	}

	if err := db.context.SetBank(start, length, bank); err != nil {
		if errors.Is(err, overrides.ErrConflict) {
			return fmt.Errorf("%w: %w", ErrRangeConflict, err)
		}
		return err
	}
	db.logger.Debug("Pinned bank",
		log.Stringer("address", start), log.Int("bank", bank), log.Int("length", length))
	return nil
}

// SetScalar marks the operands of instructions in the range as plain values.
func (db *Database) SetScalar(start address.Address, length int) error {
	if err := db.validate(start); err != nil {
		return err
	}
	if err := db.context.SetScalar(start, length); err != nil {
		return err
	}
	db.logger.Debug("Set scalar hint", log.Stringer("address", start), log.Int("length", length))
	return nil
}

// ClearContext removes all context entries starting at the address.
func (db *Database) ClearContext(start address.Address) (int, error) {
	n := db.context.Clear(start)
	if n == 0 {
		return 0, fmt.Errorf("%w: no context entry starts at %s", address.ErrUnknownAddress, start)
	}
	return n, nil
}

// Context returns all context entries.
func (db *Database) Context() []overrides.Entry {
	return db.context.Entries()
}

// CreateLabel creates a label. Names starting with a dot are created as
// local label of the global label in scope.
func (db *Database) CreateLabel(name string, addr address.Address) (symbols.Label, error) {
	if err := db.validate(addr); err != nil {
		return symbols.Label{}, err
	}
	lbl, err := db.labels.Create(name, addr)
	if err != nil {
		return symbols.Label{}, err
	}
	db.logger.Debug("Created label", log.String("name", lbl.Name), log.Stringer("address", addr))
	return lbl, nil
}

// DeleteLabel deletes a label and, for a global label, all its locals.
func (db *Database) DeleteLabel(name string) ([]symbols.Label, error) {
	deleted, err := db.labels.Delete(name)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("Deleted label", log.String("name", name), log.Int("count", len(deleted)))
	return deleted, nil
}

// RenameLabel renames a label. A new name starting with a dot is a local
// label of the same global label.
func (db *Database) RenameLabel(oldName, newName string) (symbols.Label, error) {
	lbl, err := db.labels.Rename(oldName, newName)
	if err != nil {
		return symbols.Label{}, err
	}
	db.logger.Debug("Renamed label", log.String("old", oldName), log.String("new", lbl.Name))
	return lbl, nil
}

// Label returns the label with the given name.
func (db *Database) Label(name string) (symbols.Label, bool) {
	return db.labels.Get(name)
}

// LabelAt returns the label at the address.
func (db *Database) LabelAt(addr address.Address) (symbols.Label, bool) {
	return db.labels.At(addr)
}

// Scope returns the global label in scope of the address.
func (db *Database) Scope(addr address.Address) (symbols.Label, bool) {
	return db.labels.Scope(addr)
}

// Labels returns all labels sorted by address.
func (db *Database) Labels() []symbols.Label {
	return db.labels.Labels()
}

// DeclareXref adds a reference. It returns false if the reference exists.
func (db *Database) DeclareXref(x xref.Xref) (bool, error) {
	if err := db.validate(x.From); err != nil {
		return false, fmt.Errorf("reference origin: %w", err)
	}
	if err := db.validate(x.To); err != nil {
		return false, fmt.Errorf("reference destination: %w", err)
	}
	return db.xrefs.Declare(x), nil
}

// ClearXrefs removes all references that originate at the address.
func (db *Database) ClearXrefs(from address.Address) []xref.Xref {
	return db.xrefs.Clear(from)
}

// XrefsFrom returns the references originating at the address.
func (db *Database) XrefsFrom(a address.Address) []xref.Xref {
	return db.xrefs.From(a)
}

// XrefsTo returns the references to the address.
func (db *Database) XrefsTo(a address.Address) []xref.Xref {
	return db.xrefs.To(a)
}

// Xrefs returns all references.
func (db *Database) Xrefs() []xref.Xref {
	return db.xrefs.All()
}
