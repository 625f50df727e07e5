// Package writer writes assembly listings in RGBDS syntax.
package writer

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
)

const dataBytesPerLine = 16

// ErrUnsupportedSpace is returned for listings of memory that can not hold
// assembled data.
var ErrUnsupportedSpace = errors.New("address space can not be exported")

type lineWriterFunc func(line string, offset program.Offset) error

// Writer writes a listing as assembly file.
type Writer struct {
	listing *program.Listing
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	OffsetComments bool // prefix comments with the address of the line
	HexComments    bool // add the opcode bytes as comment to code lines
}

// New creates a new writer.
func New(listing *program.Listing, writer io.Writer, options Options) *Writer {
	return &Writer{
		listing: listing,
		options: options,
		writer:  writer,
	}
}

// Write writes the complete listing.
func (w Writer) Write() error {
	if err := w.WriteCommentHeader(); err != nil {
		return err
	}
	if err := w.OutputAliasMap(w.listing.Aliases); err != nil {
		return err
	}
	if err := w.WriteSection(); err != nil {
		return err
	}
	return w.ProcessOffsets(w.listing.Offsets)
}

// WriteCommentHeader writes the CRC32 checksum and the listed range as
// comments to the output.
func (w Writer) WriteCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; ROM CRC32 checksum: %08x\n", w.listing.Checksums.ROM); err != nil {
		return fmt.Errorf("writing rom checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Listing start: %s\n\n", w.listing.Start); err != nil {
		return fmt.Errorf("writing listing start: %w", err)
	}
	return nil
}

// WriteSection writes the section directive that places the listing at its
// bank and address. A listing that does not start with a named section gets
// a section named after its start address.
func (w Writer) WriteSection() error {
	start := w.listing.Start
	if start.Space != address.ROM {
		return fmt.Errorf("%w: %s", ErrUnsupportedSpace, start.Space)
	}

	name := fmt.Sprintf("%s.%X $%04X", start.Space, start.Bank, start.CPU())
	if len(w.listing.Offsets) > 0 && w.listing.Offsets[0].Section != "" {
		name = w.listing.Offsets[0].Section
	}
	return w.writeSection(name, start)
}

func (w Writer) writeSection(name string, start address.Address) error {
	var placement string
	if start.Bank == 0 {
		placement = fmt.Sprintf("ROM0[$%04X]", start.CPU())
	} else {
		placement = fmt.Sprintf("ROMX[$%04X], BANK[$%X]", start.CPU(), start.Bank)
	}
	if _, err := fmt.Fprintf(w.writer, "SECTION \"%s\", %s\n\n", name, placement); err != nil {
		return fmt.Errorf("writing section: %w", err)
	}
	return nil
}

// ProcessOffsets writes all code offsets, labels and their comments.
func (w Writer) ProcessOffsets(offsets []program.Offset) error {
	var previousLineWasCode bool

	for i := 0; i < len(offsets); i++ {
		offset := offsets[i]

		// the directive of the first offset is written by WriteSection
		first := i == 0
		if !first && offset.Section != "" {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
			if err := w.writeSection(offset.Section, offset.Address); err != nil {
				return err
			}
			first = true
		}

		if err := w.writeLabel(first, offset); err != nil {
			return err
		}

		// print an empty line in case of data after code and vice versa
		isCode := offset.IsType(program.CodeOffset)
		if !first && offset.Label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		if isCode {
			if err := w.writeCodeLine(offset); err != nil {
				return fmt.Errorf("writing code line: %w", err)
			}
			continue
		}

		count, err := w.bundleOffsetData(offsets, i)
		if err != nil {
			return err
		}
		i += count - 1
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine
// bytes per line. The line writer is called with the offset of the first
// byte of each line.
func (w Writer) BundleDataWrites(offsets []program.Offset, lineWriter lineWriterFunc) error {
	for i := 0; i < len(offsets); {
		toWrite := min(len(offsets)-i, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("db ")
		for j := range toWrite {
			if j > 0 {
				buf.WriteString(", ")
			}
			if _, err := fmt.Fprintf(buf, "$%02x", offsets[i+j].Data[0]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		if err := lineWriter(buf.String(), offsets[i]); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}
		i += toWrite
	}
	return nil
}

// OutputAliasMap outputs the definitions of names that are used but not
// defined by the listing.
func (w Writer) OutputAliasMap(aliases map[string]uint16) error {
	if len(aliases) == 0 {
		return nil
	}

	// sort the aliases by name before outputting to avoid random map order
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w.writer, "DEF %s EQU $%04X\n", name, aliases[name]); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) writeLabel(first bool, offset program.Offset) error {
	if offset.Label == "" {
		return nil
	}

	if !first {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	// exported globals can be referenced by other listings
	suffix := "::"
	if strings.Contains(offset.Label, ".") {
		suffix = ":"
	}
	if _, err := fmt.Fprintf(w.writer, "%s%s\n", offset.Label, suffix); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeCodeLine(offset program.Offset) error {
	comment := offset.Comment
	if w.options.HexComments {
		hex, err := offset.HexCodeComment()
		if err != nil {
			return err
		}
		comment = joinComment(hex, comment)
	}
	return w.writeLine(offset.Code, w.addressComment(offset, comment))
}

func (w Writer) writeLine(line, comment string) error {
	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "  %s\n", line)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s ; %s\n", line, comment)
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// bundleOffsetData writes the data offsets starting at the index as bundled
// lines and returns the number of offsets written.
func (w Writer) bundleOffsetData(offsets []program.Offset, startIndex int) (int, error) {
	data := dataRun(offsets, startIndex)

	lineWriter := func(line string, offset program.Offset) error {
		return w.writeLine(line, w.addressComment(offset, offset.Comment))
	}
	if err := w.BundleDataWrites(data, lineWriter); err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}
	return len(data), nil
}

func (w Writer) addressComment(offset program.Offset, comment string) string {
	if !w.options.OffsetComments {
		return comment
	}
	return joinComment(fmt.Sprintf("$%04X", offset.Address.CPU()), comment)
}

// dataRun returns the data offsets following the start index that can be
// written as one bundle. A run ends at the first section, label, code or
// comment.
func dataRun(offsets []program.Offset, startIndex int) []program.Offset {
	end := startIndex + 1
	for ; end < len(offsets); end++ {
		offset := offsets[end]
		if !offset.IsType(program.DataOffset) || offset.IsType(program.CodeOffset) ||
			offset.Section != "" || offset.Label != "" || offset.Comment != "" {
			break
		}
	}
	return offsets[startIndex:end]
}

func joinComment(comment, existing string) string {
	if existing == "" {
		return comment
	}
	return comment + "  " + existing
}
