// Package command implements the command surface of the workbench. A
// session holds the state of one interactive session and dispatches text
// commands to database and analysis operations.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/history"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrUnknownCommand is returned for input that does not name a command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAmbiguousCommand is returned for abbreviations of multiple commands.
	ErrAmbiguousCommand = errors.New("ambiguous command")
	// ErrUsage is returned when the arguments of a command are invalid.
	ErrUsage = errors.New("invalid arguments")
	// ErrNoHistory is returned when navigating beyond the history.
	ErrNoHistory = errors.New("no more history entries")
	// ErrQuit is returned by the quit command.
	ErrQuit = errors.New("quit")
)

// entryPoint is the initial cursor position.
var entryPoint = address.New(address.ROM, 0, 0x0100)

// maxScriptDepth limits scripts that run scripts.
const maxScriptDepth = 8

// Dependencies contains the dependencies of a session.
type Dependencies struct {
	Logger   *log.Logger
	Database *disasm.Database
	Options  options.Workbench
}

// Session is the state of a workbench session. Commands are executed one at
// a time, a session is not safe for concurrent use.
type Session struct {
	logger  *log.Logger
	opts    options.Workbench
	db      *disasm.Database
	engine  *analysis.Engine
	history *history.History

	cursor      address.Address
	scriptDepth int
}

// New returns a new session with the cursor at the cartridge entry point.
func New(deps Dependencies) *Session {
	s := &Session{
		logger:  deps.Logger,
		opts:    deps.Options,
		db:      deps.Database,
		engine:  analysis.New(deps.Logger, deps.Database),
		history: history.New(deps.Options.HistoryLimit),
		cursor:  entryPoint,
	}
	s.history.Push(s.cursor)
	return s
}

// Cursor returns the current address.
func (s *Session) Cursor() address.Address {
	return s.cursor
}

// Database returns the database of the session.
func (s *Session) Database() *disasm.Database {
	return s.db
}

// ProjectFile returns the default file of project save and load.
func (s *Session) ProjectFile() string {
	return s.opts.ProjectFile
}

// Execute parses and executes a command line. Empty lines and comments
// starting with # return a nil result.
func (s *Session) Execute(ctx context.Context, line string) (Result, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	cmd, args, err := find(strings.Fields(line))
	if err != nil {
		return nil, err
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return nil, fmt.Errorf("%w: usage: %s", ErrUsage, cmd.syntax())
	}

	result, err := cmd.handler(s, ctx, args)
	if err != nil {
		if errors.Is(err, ErrQuit) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", cmd.path, err)
	}
	return result, nil
}

// seek moves the cursor and records the address in the history.
func (s *Session) seek(a address.Address) error {
	if err := s.db.Banks().Validate(a); err != nil {
		return err
	}
	s.cursor = a
	s.history.Push(a)
	return nil
}
