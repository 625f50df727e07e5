// Package script runs Lua automation scripts against a workbench session.
//
// Scripts access the session through the global table gb:
//
//	gb.exec(line)   executes a command and returns its result text
//	gb.read(addr)   returns the byte at an address
//	gb.label(addr)  returns the label at an address or nil
//	gb.cursor()     returns the current cursor address
//	gb.log(text)    writes a log message
//
// A failing command raises a Lua error that ends the script.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// ErrScript is returned when a script fails to load or raises an error.
var ErrScript = errors.New("script failed")

// Host is the session that scripts operate on.
type Host interface {
	Exec(ctx context.Context, line string) (string, error)
	Read(addr string) (byte, error)
	Label(addr string) (string, bool, error)
	Cursor() string
}

// Runner executes scripts.
type Runner struct {
	logger *log.Logger
	host   Host
}

// New returns a new script runner for the host.
func New(logger *log.Logger, host Host) *Runner {
	return &Runner{
		logger: logger,
		host:   host,
	}
}

// RunFile executes the Lua script file.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// RunString executes Lua source code.
func (r *Runner) RunString(ctx context.Context, source string) error {
	return r.run(ctx, "<string>", func(L *lua.LState) error {
		return L.DoString(source)
	})
}

func (r *Runner) run(ctx context.Context, name string, do func(L *lua.LState) error) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	L.SetGlobal("gb", r.module(ctx, L))

	r.logger.Debug("Running script", log.String("name", name))
	if err := do(L); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("script %s: %w", name, ctxErr)
		}
		return fmt.Errorf("%w: %s: %w", ErrScript, name, err)
	}
	return nil
}

func (r *Runner) module(ctx context.Context, L *lua.LState) *lua.LTable {
	gb := L.NewTable()

	L.SetField(gb, "exec", L.NewFunction(func(L *lua.LState) int {
		line := L.CheckString(1)
		out, err := r.host.Exec(ctx, line)
		if err != nil {
			L.RaiseError("%s: %s", line, err.Error())
			return 0
		}
		L.Push(lua.LString(out))
		return 1
	}))

	L.SetField(gb, "read", L.NewFunction(func(L *lua.LState) int {
		b, err := r.host.Read(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(b))
		return 1
	}))

	L.SetField(gb, "label", L.NewFunction(func(L *lua.LState) int {
		name, ok, err := r.host.Label(L.CheckString(1))
		switch {
		case err != nil:
			L.RaiseError("%s", err.Error())
			return 0
		case !ok:
			L.Push(lua.LNil)
		default:
			L.Push(lua.LString(name))
		}
		return 1
	}))

	L.SetField(gb, "cursor", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(r.host.Cursor()))
		return 1
	}))

	L.SetField(gb, "log", L.NewFunction(func(L *lua.LState) int {
		r.logger.Info(L.CheckString(1))
		return 0
	}))

	return gb
}
