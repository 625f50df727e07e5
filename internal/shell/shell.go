// Package shell implements the interactive line based workbench shell.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/gbdisasm/internal/command"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Shell reads commands from the input and prints their results.
type Shell struct {
	logger  *log.Logger
	session *command.Session
	in      io.Reader
	out     io.Writer
}

// New returns a new shell for the session.
func New(logger *log.Logger, session *command.Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		logger:  logger,
		session: session,
		in:      in,
		out:     out,
	}
}

// Run executes commands until the input ends, the quit command is entered or
// the context is cancelled. Line editing is enabled if the input is a
// terminal, the terminal state is restored on return.
func (s *Shell) Run(ctx context.Context) error {
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return s.runTerminal(ctx, int(f.Fd()))
	}
	return s.runPlain(ctx)
}

func (s *Shell) runTerminal(ctx context.Context, fd int) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enabling raw terminal mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			s.logger.Error("Restoring terminal state failed", log.Err(err))
		}
	}()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{s.in, s.out}, "")

	for {
		t.SetPrompt(s.prompt())
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		quit, err := s.execute(ctx, t, line)
		if quit || err != nil {
			return err
		}
	}
}

func (s *Shell) runPlain(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		quit, err := s.execute(ctx, s.out, scanner.Text())
		if quit || err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading command: %w", err)
	}
	return nil
}

// execute runs a single command line and prints its result. Command errors
// are printed, only a cancelled context ends the shell with an error.
func (s *Shell) execute(ctx context.Context, w io.Writer, line string) (bool, error) {
	result, err := s.session.Execute(ctx, line)
	switch {
	case errors.Is(err, command.ErrQuit):
		return true, nil
	case ctx.Err() != nil:
		return true, ctx.Err()
	case err != nil:
		_, err = fmt.Fprintf(w, "error: %s\n", err)
	case result != nil:
		_, err = fmt.Fprintln(w, result.String())
	}
	if err != nil {
		return true, fmt.Errorf("writing output: %w", err)
	}
	return false, nil
}

func (s *Shell) prompt() string {
	cursor := s.session.Cursor()
	if lbl, ok := s.session.Database().LabelAt(cursor); ok {
		return fmt.Sprintf("[%s %s]> ", cursor, lbl.Name)
	}
	return fmt.Sprintf("[%s]> ", cursor)
}
