// Package analysis derives references and labels from decoded instructions.
package analysis

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/gbdisasm/internal/xref"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrUnresolved is returned when the bank of a reference target can not
	// be determined.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrNoTarget is returned for instructions that do not refer to memory.
	ErrNoTarget = errors.New("instruction has no target")
)

// Engine runs the analysis steps against a database.
type Engine struct {
	logger *log.Logger
	db     *disasm.Database
}

// New returns a new analysis engine.
func New(logger *log.Logger, db *disasm.Database) *Engine {
	return &Engine{
		logger: logger,
		db:     db,
	}
}

// AutoXref commits the instruction at the address as code and declares the
// reference it makes. The returned bool is false if the reference already
// existed. Nothing is changed if the reference can not be declared.
func (e *Engine) AutoXref(addr address.Address) (xref.Xref, bool, error) {
	ins, err := e.db.Decode(addr)
	if err != nil {
		return xref.Xref{}, false, err
	}
	x, err := reference(ins)
	if err != nil {
		return xref.Xref{}, false, err
	}
	if err := e.db.Banks().Validate(x.To); err != nil {
		return xref.Xref{}, false, fmt.Errorf("reference destination: %w", err)
	}

	if _, err := e.db.CommitCode(addr); err != nil {
		return xref.Xref{}, false, err
	}
	added, err := e.declare(x)
	if err != nil {
		return xref.Xref{}, false, err
	}
	return x, added, nil
}

// reference returns the reference that the instruction makes.
func reference(ins instruction.Instruction) (xref.Xref, error) {
	if ins.Target == nil {
		return xref.Xref{}, fmt.Errorf("%w: %s at %s", ErrNoTarget, ins, ins.Address)
	}
	if !ins.Target.Resolved {
		return xref.Xref{}, fmt.Errorf("%w: bank of $%04X referenced at %s is unknown",
			ErrUnresolved, ins.Target.CPU, ins.Address)
	}

	return xref.Xref{
		Kind: referenceKind(ins),
		From: ins.Address,
		To:   ins.Target.Address,
	}, nil
}

func (e *Engine) declare(x xref.Xref) (bool, error) {
	added, err := e.db.DeclareXref(x)
	if err != nil {
		return false, err
	}
	if added {
		e.logger.Debug("Declared reference", log.Stringer("xref", x))
	}
	return added, nil
}

func referenceKind(ins instruction.Instruction) xref.Kind {
	switch {
	case ins.IsCall():
		return xref.Call
	case ins.IsJump():
		return xref.Jump
	case ins.Access == instruction.Write:
		return xref.Write
	default:
		return xref.Read
	}
}
