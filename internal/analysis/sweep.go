package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// sweepChunk is the number of offsets a single worker decodes.
const sweepChunk = 0x400

// SweepOptions controls a code sweep.
type SweepOptions struct {
	Labels  bool // label all resolved reference targets
	Workers int  // parallel decoders, 0 uses GOMAXPROCS
}

// SweepResult summarizes a code sweep.
type SweepResult struct {
	Instructions int
	Xrefs        int
	Labels       int
	Unresolved   int
	Done         bool            // the whole range was processed
	Next         address.Address // address the sweep stopped at if not done
	Stop         error           // reason the sweep stopped
}

// Sweep linearly classifies the range as code. Each instruction is committed
// and its reference declared. Data blocks are skipped. The sweep ends at the
// first byte that does not decode or conflicts with committed code. The
// instructions are decoded in parallel before any change is applied, the
// changes of every processed instruction are kept when ctx is cancelled.
func (e *Engine) Sweep(ctx context.Context, start address.Address, length int, opts SweepOptions) (SweepResult, error) {
	if err := e.db.Banks().Validate(start); err != nil {
		return SweepResult{}, err
	}
	end := min(int(start.Offset)+length, start.Space.BankSize())
	result := SweepResult{Next: start}
	if end <= int(start.Offset) {
		result.Done = true
		return result, nil
	}

	decoded, err := e.decodeRange(ctx, start, end, opts.Workers)
	if err != nil {
		return result, err
	}

	offset := int(start.Offset)
	for offset < end {
		addr := address.New(start.Space, start.Bank, uint16(offset))
		result.Next = addr
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sweep cancelled at %s: %w", addr, err)
		}

		if b, ok := e.db.BlockAt(addr); ok {
			offset = int(b.Address.Offset) + b.Size()
			continue
		}

		ins := decoded[offset-int(start.Offset)]
		if ins == nil {
			result.Stop = fmt.Errorf("no valid instruction at %s", addr)
			break
		}

		if err := e.sweepInstruction(*ins, opts, &result); err != nil {
			result.Stop = err
			break
		}
		offset += ins.Length
	}

	result.Done = offset >= end
	e.logger.Debug("Sweep finished",
		log.Stringer("start", start),
		log.Int("instructions", result.Instructions),
		log.Int("xrefs", result.Xrefs))
	return result, nil
}

func (e *Engine) sweepInstruction(ins instruction.Instruction, opts SweepOptions, result *SweepResult) error {
	if _, err := e.db.CommitCode(ins.Address); err != nil {
		return err
	}
	result.Instructions++

	// unresolved instructions stay committed, the sweep classifies code
	x, err := reference(ins)
	switch {
	case errors.Is(err, ErrNoTarget):
		return nil
	case errors.Is(err, ErrUnresolved):
		result.Unresolved++
		return nil
	case err != nil:
		return err
	}
	added, err := e.declare(x)
	if err != nil {
		return err
	}
	if added {
		result.Xrefs++
	}

	if !opts.Labels {
		return nil
	}
	_, labeled := e.db.LabelAt(x.To)
	if _, err := e.AutoLabel(x.To); err != nil {
		return err
	}
	if !labeled {
		result.Labels++
	}
	return nil
}

// decodeRange decodes an instruction at every offset of the range. Offsets
// that do not decode are nil. The database is only read.
func (e *Engine) decodeRange(ctx context.Context, start address.Address, end, workers int) ([]*instruction.Instruction, error) {
	first := int(start.Offset)
	decoded := make([]*instruction.Instruction, end-first)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for chunk := first; chunk < end; chunk += sweepChunk {
		g.Go(func() error {
			for offset := chunk; offset < min(chunk+sweepChunk, end); offset++ {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("decoding range: %w", err)
				}
				ins, err := e.db.Decode(address.New(start.Space, start.Bank, uint16(offset)))
				if err != nil {
					continue
				}
				decoded[offset-first] = &ins
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decoded, nil
}
