// Package pipeline orchestrates the workbench session stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/gbdisasm/internal/app"
	"github.com/retroenv/gbdisasm/internal/cartridge"
	"github.com/retroenv/gbdisasm/internal/command"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/loader"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/project"
	"github.com/retroenv/gbdisasm/internal/shell"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete workbench workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new workbench pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Execute loads the cartridge and runs the session.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, workbench options.Workbench,
	in io.Reader, out io.Writer) (*command.Session, error) {

	cart, img, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}
	return p.ExecuteWithCartridge(ctx, cart, img, opts, workbench, in, out)
}

// ExecuteWithCartridge runs the session with a pre-loaded cartridge. The
// project is loaded first, then the script or the interactive shell runs.
// The project is written on success if an output file is given.
// This is useful for testing and programmatic usage where the cartridge is already in memory.
func (p *Pipeline) ExecuteWithCartridge(ctx context.Context, cart *cartridge.Cartridge, img *memory.Image,
	opts options.Program, workbench options.Workbench, in io.Reader, out io.Writer) (*command.Session, error) {

	app.PrintInfo(p.logger, opts, cart)

	db := disasm.New(disasm.Dependencies{
		Logger:   p.logger,
		Source:   img,
		Checksum: cart.CRC32,
	})
	if err := p.loadProject(db, opts.Project); err != nil {
		return nil, err
	}

	session := command.New(command.Dependencies{
		Logger:   p.logger,
		Database: db,
		Options:  workbench,
	})

	if err := p.run(ctx, session, opts.Script, in, out); err != nil {
		return session, err
	}

	if opts.Output != "" {
		if err := project.Save(opts.Output, db.Snapshot()); err != nil {
			return session, fmt.Errorf("saving project: %w", err)
		}
		p.logger.Info("Saved project", log.String("file", opts.Output))
	}
	return session, nil
}

// loadProject restores the database from the project file if one is given.
func (p *Pipeline) loadProject(db *disasm.Database, path string) error {
	if path == "" {
		return nil
	}

	prg, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	if err := db.Restore(prg); err != nil {
		return fmt.Errorf("restoring project %s: %w", path, err)
	}

	p.logger.Info("Loaded project",
		log.String("file", path),
		log.Int("labels", len(prg.Labels)),
		log.Int("blocks", len(prg.Blocks)),
		log.Int("xrefs", len(prg.Xrefs)))
	return nil
}

// run executes the script if one is given, otherwise the interactive shell.
func (p *Pipeline) run(ctx context.Context, session *command.Session, script string, in io.Reader, out io.Writer) error {
	if script != "" {
		if err := session.RunScript(ctx, script); err != nil {
			return fmt.Errorf("running script: %w", err)
		}
		return nil
	}

	sh := shell.New(p.logger, session, in, out)
	if err := sh.Run(ctx); err != nil {
		return fmt.Errorf("running shell: %w", err)
	}
	return nil
}
