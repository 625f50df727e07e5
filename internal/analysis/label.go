package analysis

import (
	"fmt"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/consts"
	"github.com/retroenv/gbdisasm/internal/xref"
	"github.com/retroenv/retrogolib/log"
)

const (
	funcNaming  = "func_%s"
	jumpNaming  = "jump_%s"
	localNaming = ".jump_%04X"
	dataNaming  = "data_%s"
	varNaming   = "var_%s"
	labelNaming = "label_%s"
)

// AutoLabel returns the name of the label at the address, creating a label
// named after the incoming references if the address is not labeled yet.
func (e *Engine) AutoLabel(addr address.Address) (string, error) {
	if !addr.Resolved() {
		return "", fmt.Errorf("%w: can not label %s", address.ErrAmbiguousBank, addr)
	}
	if lbl, ok := e.db.LabelAt(addr); ok {
		return lbl.Name, nil
	}

	name, scope := e.labelName(addr)
	unique := name
	for i := 1; e.exists(scope + unique); i++ {
		unique = fmt.Sprintf("%s_%d", name, i)
	}

	lbl, err := e.db.CreateLabel(unique, addr)
	if err != nil {
		return "", err
	}
	e.logger.Debug("Created label", log.String("name", lbl.Name), log.Stringer("address", addr))
	return lbl.Name, nil
}

func (e *Engine) exists(name string) bool {
	_, ok := e.db.Label(name)
	return ok
}

// labelName returns the generated name for the address and, for local
// names, the global label that the name is qualified with.
func (e *Engine) labelName(addr address.Address) (string, string) {
	var called, jumped, accessed bool
	for _, x := range e.db.XrefsTo(addr) {
		switch x.Kind {
		case xref.Call:
			called = true
		case xref.Jump:
			jumped = true
		default:
			accessed = true
		}
	}

	core := locationCore(addr)
	switch {
	case called:
		return fmt.Sprintf(funcNaming, core), ""

	case jumped:
		if scope, ok := e.db.Scope(addr); ok {
			return fmt.Sprintf(localNaming, addr.CPU()), scope.Name
		}
		return fmt.Sprintf(jumpNaming, core), ""

	case accessed:
		if c, ok := consts.Register(addr.CPU()); ok {
			return c.Name, ""
		}
		if addr.Space.IsRAM() {
			return fmt.Sprintf(varNaming, core), ""
		}
		return fmt.Sprintf(dataNaming, core), ""

	default:
		return fmt.Sprintf(labelNaming, core), ""
	}
}

// locationCore returns the address part of generated names, for example
// 01_4000 for ROM bank 1 or wram_00_C000.
func locationCore(addr address.Address) string {
	switch {
	case addr.Space == address.ROM:
		return fmt.Sprintf("%02X_%04X", addr.Bank, addr.CPU())
	case addr.Space.Banked():
		return fmt.Sprintf("%s_%02X_%04X", strings.ToLower(addr.Space.String()), addr.Bank, addr.CPU())
	default:
		return fmt.Sprintf("%s_%04X", strings.ToLower(addr.Space.String()), addr.CPU())
	}
}
