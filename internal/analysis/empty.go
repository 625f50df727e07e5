package analysis

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// EmptyBanks classifies every ROM bank that is filled with a single $00 or
// $FF byte as empty data block. Banks that already contain a classified
// element are skipped.
func (e *Engine) EmptyBanks() ([]*disasm.Block, error) {
	var blocks []*disasm.Block
	size := address.ROM.BankSize()

	for _, bank := range e.db.Banks().Banks(address.ROM) {
		start := address.New(address.ROM, bank, 0)
		raw, err := memory.Read(e.db.Source(), start, size)
		if err != nil {
			return blocks, fmt.Errorf("reading ROM bank %d: %w", bank, err)
		}
		if !filled(raw) {
			continue
		}

		b, err := e.db.CreateBlock(data.Empty, start, size, "")
		if errors.Is(err, disasm.ErrRangeConflict) {
			e.logger.Debug("Skipping empty bank with classified content", log.Int("bank", bank))
			continue
		}
		if err != nil {
			return blocks, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func filled(raw []byte) bool {
	if len(raw) == 0 || (raw[0] != 0x00 && raw[0] != 0xFF) {
		return false
	}
	for _, b := range raw[1:] {
		if b != raw[0] {
			return false
		}
	}
	return true
}
