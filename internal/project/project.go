// Package project reads and writes project files.
//
// A project file is a text file starting with a header line and the checksum
// of the ROM, followed by one line per user decision in the syntax of the
// command that creates it:
//
//	gbdisasm project 1
//	rom 1A2B3C4D
//	context set bank $4000 1 1
//	data create palette VRAM.0:$8000 8
//	code mark ROM.0:$0100
//	label create main ROM.0:$0150
//	xref declare jump ROM.0:$0100 ROM.1:$4000
//	comment set ROM.0:$0150 main loop
//	section create Home ROM.0:$0150
//	data freed ROM.1:$4000 16
//
// Ranges of deleted data blocks have no command, they are stored as data
// freed lines so that references into them stay reported as dangling.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/xref"
)

const (
	header  = "gbdisasm project"
	version = 1
)

// ErrInvalidProject is returned for project files that can not be parsed.
var ErrInvalidProject = errors.New("invalid project file")

// Save writes the program to the file. The file is written to a temporary
// file in the same directory first and replaces the target only if writing
// succeeded.
func Save(path string, p program.Program) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = Write(w, p); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing project file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing project file '%s': %w", path, err)
	}
	return nil
}

// Load reads a program from the file.
func Load(path string) (program.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return program.Program{}, fmt.Errorf("opening project file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	p, err := Read(f)
	if err != nil {
		return program.Program{}, fmt.Errorf("reading project file '%s': %w", path, err)
	}
	return p, nil
}

// Write writes the program in project file format.
func Write(w io.Writer, p program.Program) error {
	lines := []string{
		fmt.Sprintf("%s %d", header, version),
		fmt.Sprintf("rom %08X", p.Checksums.ROM),
	}

	for _, e := range p.Context {
		switch e.Kind {
		case overrides.Bank:
			lines = append(lines, fmt.Sprintf("context set bank %s %d %d", formatAddress(e.Start), e.Bank, e.Length))
		case overrides.Scalar:
			lines = append(lines, fmt.Sprintf("context set scalar %s %d", formatAddress(e.Start), e.Length))
		}
	}
	for _, b := range p.Blocks {
		line := fmt.Sprintf("data create %s %s %d", b.Kind, formatAddress(b.Address), b.Length)
		if b.Spec != "" {
			line += " " + b.Spec
		}
		lines = append(lines, line)
	}
	for _, a := range p.Code {
		lines = append(lines, "code mark "+formatAddress(a))
	}
	for _, lbl := range p.Labels {
		lines = append(lines, fmt.Sprintf("label create %s %s", lbl.Name, formatAddress(lbl.Address)))
	}
	for _, x := range p.Xrefs {
		lines = append(lines, fmt.Sprintf("xref declare %s %s %s", x.Kind, formatAddress(x.From), formatAddress(x.To)))
	}
	for _, c := range p.Comments {
		lines = append(lines, fmt.Sprintf("comment set %s %s", formatAddress(c.Address), c.Text))
	}
	for _, sec := range p.Sections {
		lines = append(lines, fmt.Sprintf("section create %s %s", sec.Name, formatAddress(sec.Address)))
	}
	for _, r := range p.Freed {
		lines = append(lines, fmt.Sprintf("data freed %s %d", formatAddress(r.Address), r.Length))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing project file: %w", err)
		}
	}
	return nil
}

// formatAddress returns the text form of an address that Read parses back.
// Unresolved addresses are written as CPU address.
func formatAddress(a address.Address) string {
	if !a.Resolved() {
		return fmt.Sprintf("$%04X", a.CPU())
	}
	return a.String()
}

// Read parses a program in project file format. Empty lines and lines
// starting with # are ignored.
func Read(r io.Reader) (program.Program, error) {
	var p program.Program
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	headerRead := false

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		if !headerRead {
			err = parseHeader(line)
			headerRead = true
		} else {
			err = parseLine(&p, strings.Fields(line))
		}
		if err != nil {
			return program.Program{}, fmt.Errorf("%w: line %d: %w", ErrInvalidProject, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return program.Program{}, fmt.Errorf("scanning project file: %w", err)
	}
	if !headerRead {
		return program.Program{}, fmt.Errorf("%w: missing header", ErrInvalidProject)
	}
	return p, nil
}

func parseHeader(line string) error {
	v, ok := strings.CutPrefix(line, header+" ")
	if !ok {
		return errors.New("missing header")
	}
	n, err := strconv.Atoi(v)
	if err != nil || n != version {
		return fmt.Errorf("unsupported version '%s'", v)
	}
	return nil
}

func parseLine(p *program.Program, fields []string) error {
	switch {
	case matches(fields, 2, "rom"):
		crc, err := strconv.ParseUint(fields[1], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid checksum '%s'", fields[1])
		}
		p.Checksums.ROM = uint32(crc)
		return nil

	case matches(fields, 6, "context", "set", "bank"):
		return parseContext(p, overrides.Bank, fields[3], fields[5], fields[4])

	case matches(fields, 5, "context", "set", "scalar"):
		return parseContext(p, overrides.Scalar, fields[3], fields[4], "0")

	case matches(fields, 5, "data", "create") || matches(fields, 6, "data", "create"):
		return parseBlock(p, fields[2:])

	case matches(fields, 4, "data", "freed"):
		a, err := address.Parse(fields[2])
		if err != nil {
			return err
		}
		length, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("invalid length '%s'", fields[3])
		}
		p.Freed = append(p.Freed, program.Range{Address: a, Length: length})
		return nil

	case matches(fields, 4, "section", "create"):
		a, err := address.Parse(fields[3])
		if err != nil {
			return err
		}
		p.Sections = append(p.Sections, program.Section{Name: fields[2], Address: a})
		return nil

	case matches(fields, 3, "code", "mark"):
		a, err := address.Parse(fields[2])
		if err != nil {
			return err
		}
		p.Code = append(p.Code, a)
		return nil

	case matches(fields, 4, "label", "create"):
		a, err := address.Parse(fields[3])
		if err != nil {
			return err
		}
		p.Labels = append(p.Labels, symbols.Label{Name: fields[2], Address: a})
		return nil

	case matches(fields, 5, "xref", "declare"):
		return parseXref(p, fields[2:])

	case len(fields) >= 4 && matches(fields[:2], 2, "comment", "set"):
		a, err := address.Parse(fields[2])
		if err != nil {
			return err
		}
		p.Comments = append(p.Comments, program.Comment{Address: a, Text: strings.Join(fields[3:], " ")})
		return nil

	default:
		return fmt.Errorf("unknown entry '%s'", strings.Join(fields, " "))
	}
}

// matches returns whether the line has n fields and starts with the words.
func matches(fields []string, n int, words ...string) bool {
	if len(fields) != n {
		return false
	}
	for i, word := range words {
		if fields[i] != word {
			return false
		}
	}
	return true
}

func parseContext(p *program.Program, kind overrides.Kind, start, length, bank string) error {
	a, err := address.Parse(start)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(length)
	if err != nil {
		return fmt.Errorf("invalid length '%s'", length)
	}
	b, err := strconv.Atoi(bank)
	if err != nil {
		return fmt.Errorf("invalid bank '%s'", bank)
	}
	p.Context = append(p.Context, overrides.Entry{Start: a, Length: n, Kind: kind, Bank: b})
	return nil
}

func parseBlock(p *program.Program, fields []string) error {
	kind, err := data.ParseKind(fields[0])
	if err != nil {
		return err
	}
	a, err := address.Parse(fields[1])
	if err != nil {
		return err
	}
	length, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid length '%s'", fields[2])
	}

	b := program.Block{Address: a, Kind: kind, Length: length}
	if len(fields) > 3 {
		b.Spec = fields[3]
	}
	p.Blocks = append(p.Blocks, b)
	return nil
}

func parseXref(p *program.Program, fields []string) error {
	kind, err := xref.ParseKind(fields[0])
	if err != nil {
		return err
	}
	from, err := address.Parse(fields[1])
	if err != nil {
		return err
	}
	to, err := address.Parse(fields[2])
	if err != nil {
		return err
	}
	p.Xrefs = append(p.Xrefs, xref.Xref{Kind: kind, From: from, To: to})
	return nil
}
