package disasm

import (
	"fmt"
	"maps"
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// Block is a data block. Length and Spec are the parameters the block was
// created with, Result.Consumed is the number of bytes it occupies.
type Block struct {
	Address address.Address
	Kind    data.Kind
	Length  int
	Spec    string
	Result  data.Result
}

// Size returns the number of bytes the block occupies.
func (b *Block) Size() int {
	return b.Result.Consumed
}

func (b *Block) span() span {
	return span{start: b.Address, length: b.Size()}
}

// PreviewBlock decodes a data block without committing it.
func (db *Database) PreviewBlock(kind data.Kind, addr address.Address, length int, spec string) (*Block, error) {
	if err := db.validate(addr); err != nil {
		return nil, err
	}

	// a block can not extend beyond the end of its bank
	raw, err := memory.Read(db.deps.Source, addr, addr.Space.BankSize())
	if err != nil {
		return nil, fmt.Errorf("reading block data: %w", err)
	}

	result, err := data.Decode(kind, addr.CPU(), raw, length, spec)
	if err != nil {
		return nil, fmt.Errorf("decoding %s block at %s: %w", kind, addr, err)
	}

	return &Block{
		Address: addr,
		Kind:    kind,
		Length:  length,
		Spec:    spec,
		Result:  result,
	}, nil
}

// CreateBlock decodes and commits a data block. The block may not overlap any
// other block or committed instruction.
func (db *Database) CreateBlock(kind data.Kind, addr address.Address, length int, spec string) (*Block, error) {
	b, err := db.PreviewBlock(kind, addr, length, spec)
	if err != nil {
		return nil, err
	}
	if err := db.checkFree(b.span()); err != nil {
		return nil, err
	}

	db.blocks[addr] = b
	db.extents.add(extent{span: b.span()})
	db.logger.Debug("Created data block",
		log.Stringer("address", addr), log.Stringer("kind", kind), log.Int("size", b.Size()))
	return b, nil
}

// DeleteBlock removes the data block starting at the address. Labels and
// references inside the block are kept.
func (db *Database) DeleteBlock(addr address.Address) (*Block, error) {
	b, ok := db.blocks[addr]
	if !ok {
		return nil, fmt.Errorf("%w: no data block starts at %s", address.ErrUnknownAddress, addr)
	}

	delete(db.blocks, addr)
	db.extents.remove(addr)
	db.freed.Add(b.span())
	db.logger.Debug("Deleted data block", log.Stringer("address", addr))
	return b, nil
}

// BlockAt returns the data block that contains the address.
func (db *Database) BlockAt(a address.Address) (*Block, bool) {
	x, ok := db.extents.at(a)
	if !ok || x.code {
		return nil, false
	}
	return db.blocks[x.start], true
}

// Blocks returns all data blocks sorted by address.
func (db *Database) Blocks() []*Block {
	keys := slices.SortedFunc(maps.Keys(db.blocks), address.Address.Compare)
	blocks := make([]*Block, 0, len(keys))
	for _, key := range keys {
		blocks = append(blocks, db.blocks[key])
	}
	return blocks
}

// checkFree returns a range conflict if the span overlaps a committed element.
func (db *Database) checkFree(s span) error {
	x, ok := db.extents.overlapping(s)
	if !ok {
		return nil
	}
	what := "data block"
	if x.code {
		what = "instruction"
	}
	return fmt.Errorf("%w: %s to $%04X overlaps %s at %s",
		ErrRangeConflict, s.start, s.start.CPU()+uint16(s.length-1), what, x.start)
}
