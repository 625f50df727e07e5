package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/project"
	"github.com/retroenv/gbdisasm/internal/script"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/writer"
	"github.com/retroenv/gbdisasm/internal/xref"
	"github.com/retroenv/retrogolib/log"
)

func (s *Session) onSeek(_ context.Context, args []string) (Result, error) {
	a, err := s.parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.seek(a); err != nil {
		return nil, err
	}
	return s.position(), nil
}

func (s *Session) onBack(context.Context, []string) (Result, error) {
	a, ok := s.history.Back()
	if !ok {
		return nil, ErrNoHistory
	}
	s.cursor = a
	return s.position(), nil
}

func (s *Session) onForward(context.Context, []string) (Result, error) {
	a, ok := s.history.Forward()
	if !ok {
		return nil, ErrNoHistory
	}
	s.cursor = a
	return s.position(), nil
}

func (s *Session) position() Position {
	p := Position{Address: s.cursor}
	if lbl, ok := s.db.LabelAt(s.cursor); ok {
		p.Label = lbl.Name
	}
	return p
}

func (s *Session) onInspect(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	el, err := s.db.Inspect(a)
	if err != nil {
		return nil, err
	}
	return Inspection{Element: el}, nil
}

// contextAddress parses the start of a context entry. CPU relative
// addresses in a switched window stay unresolved and select references to
// the window.
func (s *Session) contextAddress(args []string) (address.Address, error) {
	if len(args) == 0 {
		return s.cursor, nil
	}
	if _, ok := s.labelName(args[0]); ok {
		return s.parseAddress(args[0])
	}
	return address.Parse(args[0])
}

func (s *Session) onContextClear(_ context.Context, args []string) (Result, error) {
	a, err := s.contextAddress(args)
	if err != nil {
		return nil, err
	}
	n, err := s.db.ClearContext(a)
	if err != nil {
		return nil, err
	}
	return Cleared{What: "context entries", Count: n}, nil
}

func (s *Session) onContextScalar(_ context.Context, args []string) (Result, error) {
	a, rest, err := s.optionalAddress(args, 1)
	if err != nil {
		return nil, err
	}
	length, err := optionalNumber(rest, 0, 1)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetScalar(a, length); err != nil {
		return nil, err
	}
	return ContextChange{Entry: overrides.Entry{Start: a, Length: length, Kind: overrides.Scalar}}, nil
}

func (s *Session) onContextBank(_ context.Context, args []string) (Result, error) {
	a, err := s.contextAddress(args[:1])
	if err != nil {
		return nil, err
	}
	bank, err := number(args[1])
	if err != nil {
		return nil, err
	}
	// a target pin without a length covers the rest of the bank window
	defaultLength := 1
	if !a.Resolved() {
		defaultLength = a.Space.BankSize() - int(a.Offset)
	}
	length, err := optionalNumber(args, 2, defaultLength)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetBank(a, bank, length); err != nil {
		return nil, err
	}
	return ContextChange{Entry: overrides.Entry{Start: a, Length: length, Kind: overrides.Bank, Bank: bank}}, nil
}

func dataHandler(kind data.Kind, preview bool) handler {
	return func(s *Session, _ context.Context, args []string) (Result, error) {
		others := 1
		if kind == data.Table {
			others = 2
		}
		a, rest, err := s.optionalAddress(args, others)
		if err != nil {
			return nil, err
		}
		if kind == data.Header && len(args) == 0 {
			a = address.New(address.ROM, 0, data.HeaderStart)
		}

		length, err := optionalNumber(rest, 0, 0)
		if err != nil {
			return nil, err
		}
		var spec string
		if kind == data.Table {
			if len(rest) != 2 {
				return nil, fmt.Errorf("%w: table needs rows and fields", ErrUsage)
			}
			spec = rest[1]
		}

		if preview {
			b, err := s.db.PreviewBlock(kind, a, length, spec)
			if err != nil {
				return nil, err
			}
			return BlockResult{Block: b, Action: "preview of"}, nil
		}
		b, err := s.db.CreateBlock(kind, a, length, spec)
		if err != nil {
			return nil, err
		}
		return BlockResult{Block: b, Action: "created"}, nil
	}
}

func (s *Session) onDataDelete(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := s.db.DeleteBlock(a)
	if err != nil {
		return nil, err
	}
	return BlockResult{Block: b, Action: "deleted"}, nil
}

func (s *Session) onLabelAuto(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	name, err := s.engine.AutoLabel(a)
	if err != nil {
		return nil, err
	}
	lbl, _ := s.db.Label(name)
	return LabelChange{Labels: []symbols.Label{lbl}, Action: "auto"}, nil
}

func (s *Session) onLabelCreate(_ context.Context, args []string) (Result, error) {
	a := s.cursor
	if len(args) > 1 {
		var err error
		if a, err = s.parseAddress(args[1]); err != nil {
			return nil, err
		}
	}
	lbl, err := s.db.CreateLabel(args[0], a)
	if err != nil {
		return nil, err
	}
	return LabelChange{Labels: []symbols.Label{lbl}, Action: "created"}, nil
}

func (s *Session) onLabelDelete(_ context.Context, args []string) (Result, error) {
	name, _ := s.labelName(args[0])
	deleted, err := s.db.DeleteLabel(name)
	if err != nil {
		return nil, err
	}
	return LabelChange{Labels: deleted, Action: "deleted"}, nil
}

func (s *Session) onLabelRename(_ context.Context, args []string) (Result, error) {
	name, _ := s.labelName(args[0])
	lbl, err := s.db.RenameLabel(name, args[1])
	if err != nil {
		return nil, err
	}
	return LabelChange{Labels: []symbols.Label{lbl}, Action: "renamed"}, nil
}

func (s *Session) onXrefAuto(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	x, added, err := s.engine.AutoXref(a)
	if err != nil {
		return nil, err
	}
	action := "declared"
	if !added {
		action = "existing"
	}
	return XrefChange{Xrefs: []xref.Xref{x}, Action: action}, nil
}

func (s *Session) onXrefClear(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	return XrefChange{Xrefs: s.db.ClearXrefs(a), Action: "cleared"}, nil
}

func (s *Session) onXrefDeclare(_ context.Context, args []string) (Result, error) {
	kind, err := xref.ParseKind(args[0])
	if err != nil {
		return nil, err
	}
	from, err := s.parseAddress(args[1])
	if err != nil {
		return nil, err
	}
	to, err := s.parseAddress(args[2])
	if err != nil {
		return nil, err
	}

	x := xref.Xref{Kind: kind, From: from, To: to}
	added, err := s.db.DeclareXref(x)
	if err != nil {
		return nil, err
	}
	action := "declared"
	if !added {
		action = "existing"
	}
	return XrefChange{Xrefs: []xref.Xref{x}, Action: action}, nil
}

func (s *Session) onCodeMark(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	ins, err := s.db.CommitCode(a)
	if err != nil {
		return nil, err
	}
	return CodeChange{Address: a, Instruction: &ins}, nil
}

func (s *Session) onCodeClear(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	if err := s.db.ClearCode(a); err != nil {
		return nil, err
	}
	return CodeChange{Address: a}, nil
}

func (s *Session) onAnalyzeSweep(ctx context.Context, args []string) (Result, error) {
	a, rest, err := s.optionalAddress(args, 1)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: missing length", ErrUsage)
	}
	length, err := number(rest[0])
	if err != nil {
		return nil, err
	}

	opts := analysis.SweepOptions{
		Labels:  s.opts.SweepLabels,
		Workers: s.opts.Workers,
	}
	result, err := s.engine.Sweep(ctx, a, length, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Warn("Sweep cancelled, keeping processed instructions",
				log.Int("instructions", result.Instructions))
		}
		return nil, err
	}
	return Sweep{SweepResult: result}, nil
}

func (s *Session) onSectionCreate(_ context.Context, args []string) (Result, error) {
	a := s.cursor
	if len(args) > 1 {
		var err error
		if a, err = s.parseAddress(args[1]); err != nil {
			return nil, err
		}
	}
	created, err := s.db.CreateSection(args[0], a)
	if err != nil {
		return nil, err
	}
	action := "created"
	if !created {
		action = "existing"
	}
	return SectionChange{Sections: []program.Section{{Address: a, Name: args[0]}}, Action: action}, nil
}

func (s *Session) onSectionDelete(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	deleted, err := s.db.DeleteSection(a)
	if err != nil {
		return nil, err
	}
	return SectionChange{Sections: []program.Section{deleted}, Action: "deleted"}, nil
}

func (s *Session) onSectionList(context.Context, []string) (Result, error) {
	return SectionChange{Sections: s.db.Sections(), Action: "listed"}, nil
}

func (s *Session) onAnalyzeEmpty(context.Context, []string) (Result, error) {
	blocks, err := s.engine.EmptyBanks()
	if err != nil {
		return nil, err
	}
	return EmptyBanks{Blocks: blocks}, nil
}

func (s *Session) projectPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if s.opts.ProjectFile == "" {
		return "", fmt.Errorf("%w: no project file given", ErrUsage)
	}
	return s.opts.ProjectFile, nil
}

func (s *Session) onProjectSave(_ context.Context, args []string) (Result, error) {
	path, err := s.projectPath(args)
	if err != nil {
		return nil, err
	}
	if err := project.Save(path, s.db.Snapshot()); err != nil {
		return nil, err
	}
	s.opts.ProjectFile = path
	return Message("saved project " + path), nil
}

func (s *Session) onProjectLoad(_ context.Context, args []string) (Result, error) {
	path, err := s.projectPath(args)
	if err != nil {
		return nil, err
	}
	p, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	if err := s.db.Restore(p); err != nil {
		return nil, err
	}
	s.opts.ProjectFile = path
	return Message("loaded project " + path), nil
}

func (s *Session) onCommentSet(_ context.Context, args []string) (Result, error) {
	a, err := s.parseAddress(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.db.SetComment(a, strings.Join(args[1:], " ")); err != nil {
		return nil, err
	}
	text, _ := s.db.Comment(a)
	return CommentChange{Address: a, Text: text}, nil
}

func (s *Session) onCommentClear(_ context.Context, args []string) (Result, error) {
	a, _, err := s.optionalAddress(args, 0)
	if err != nil {
		return nil, err
	}
	if err := s.db.ClearComment(a); err != nil {
		return nil, err
	}
	return CommentChange{Address: a}, nil
}

// onExport writes the listing of a range, by default from the address to
// the end of its bank. The file is only written if the whole listing could
// be generated.
func (s *Session) onExport(_ context.Context, args []string) (Result, error) {
	path := args[0]
	a, rest, err := s.optionalAddress(args[1:], 1)
	if err != nil {
		return nil, err
	}
	length, err := optionalNumber(rest, 0, a.Space.BankSize()-int(a.Offset))
	if err != nil {
		return nil, err
	}

	listing, err := s.db.Listing(a, length)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := writer.New(&listing, &buf, writer.Options{
		HexComments:    s.opts.HexComments,
		OffsetComments: s.opts.OffsetComments,
	})
	if err := w.Write(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing listing file: %w", err)
	}

	s.logger.Debug("Exported listing", log.String("file", path), log.Stringer("start", a))
	return Exported{Path: path, Start: a, Lines: len(listing.Offsets)}, nil
}

func (s *Session) onScriptRun(ctx context.Context, args []string) (Result, error) {
	if err := s.RunScript(ctx, args[0]); err != nil {
		return nil, err
	}
	return Message("finished script " + args[0]), nil
}

// RunScript executes a Lua script file against the session.
func (s *Session) RunScript(ctx context.Context, path string) error {
	if s.scriptDepth >= maxScriptDepth {
		return fmt.Errorf("%w: scripts nested deeper than %d", script.ErrScript, maxScriptDepth)
	}
	s.scriptDepth++
	defer func() { s.scriptDepth-- }()

	runner := script.New(s.logger, host{s})
	return runner.RunFile(ctx, path)
}

func (s *Session) onHelp(context.Context, []string) (Result, error) {
	var sb strings.Builder
	for _, c := range leaves(commands) {
		fmt.Fprintf(&sb, "%-42s %s\n", c.syntax(), c.description)
	}
	return Message(strings.TrimSuffix(sb.String(), "\n")), nil
}

func (s *Session) onQuit(context.Context, []string) (Result, error) {
	return nil, ErrQuit
}
