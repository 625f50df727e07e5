package command

import (
	"fmt"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/instruction"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/xref"
)

// Result is the outcome of a successful command.
type Result interface {
	String() string
}

// Position is the cursor after a navigation command.
type Position struct {
	Address address.Address
	Label   string
}

func (r Position) String() string {
	if r.Label == "" {
		return r.Address.String()
	}
	return fmt.Sprintf("%s (%s)", r.Address, r.Label)
}

// Inspection is everything known about an address.
type Inspection struct {
	disasm.Element
}

func (r Inspection) String() string {
	var sb strings.Builder
	el := r.Element

	fmt.Fprintf(&sb, "%s", el.Offset.Address)
	if el.Label != nil {
		fmt.Fprintf(&sb, "  %s:", el.Label.Name)
	} else if el.Scope != "" {
		fmt.Fprintf(&sb, "  (in %s)", el.Scope)
	}
	sb.WriteByte('\n')

	switch {
	case el.Block != nil:
		fmt.Fprintf(&sb, "  data %s at %s, %d bytes\n", el.Block.Kind, el.Block.Address, el.Block.Size())
		if desc := el.Block.Result.Description; desc != "" {
			fmt.Fprintf(&sb, "  %s\n", desc)
		}
		if hex, _ := el.Offset.HexCodeComment(); hex != "" {
			fmt.Fprintf(&sb, "  %s\n", hex)
		}
	case el.Instruction != nil:
		state := "unclassified"
		if el.Committed {
			state = "code"
		}
		fmt.Fprintf(&sb, "  %-9s %-20s ; %s%s\n", opcodeHex(el.Instruction.Opcode), el.Instruction, state,
			targetComment(el.Instruction))
	default:
		sb.WriteString("  no valid instruction\n")
	}

	fmt.Fprintf(&sb, "  type: %s\n", el.Offset.Type)
	if el.Offset.Section != "" {
		fmt.Fprintf(&sb, "  section: %s\n", el.Offset.Section)
	}
	if el.Comment != "" {
		fmt.Fprintf(&sb, "  comment: %s\n", el.Comment)
	}
	for _, e := range el.Context {
		fmt.Fprintf(&sb, "  context: %s\n", contextText(e))
	}
	for _, x := range el.From {
		fmt.Fprintf(&sb, "  ref to: %s %s\n", x.Kind, x.To)
	}
	for _, x := range el.To {
		fmt.Fprintf(&sb, "  ref from: %s %s\n", x.Kind, x.From)
	}
	for _, f := range el.Findings {
		fmt.Fprintf(&sb, "  warning: %s\n", f)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// ContextChange is a created context entry.
type ContextChange struct {
	Entry overrides.Entry
}

func (r ContextChange) String() string {
	return "context " + contextText(r.Entry)
}

// Cleared is the number of removed entities.
type Cleared struct {
	What  string
	Count int
}

func (r Cleared) String() string {
	return fmt.Sprintf("cleared %d %s", r.Count, r.What)
}

// BlockResult is a created, previewed or deleted data block.
type BlockResult struct {
	Block  *disasm.Block
	Action string
}

func (r BlockResult) String() string {
	b := r.Block
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s block %s, %d bytes", r.Action, b.Kind, b.Address, b.Size())
	if r.Action == "deleted" {
		return sb.String()
	}
	writeDecoded(&sb, b.Result)
	return sb.String()
}

// LabelChange lists created, renamed or deleted labels.
type LabelChange struct {
	Labels []symbols.Label
	Action string
}

func (r LabelChange) String() string {
	lines := make([]string, 0, len(r.Labels))
	for _, lbl := range r.Labels {
		lines = append(lines, fmt.Sprintf("%s label %s at %s", r.Action, lbl.Name, lbl.Address))
	}
	return strings.Join(lines, "\n")
}

// SectionChange lists created, deleted or listed sections.
type SectionChange struct {
	Sections []program.Section
	Action   string
}

func (r SectionChange) String() string {
	if len(r.Sections) == 0 {
		return "no sections"
	}
	lines := make([]string, 0, len(r.Sections))
	for _, sec := range r.Sections {
		lines = append(lines, fmt.Sprintf("%s section %s at %s", r.Action, sec.Name, sec.Address))
	}
	return strings.Join(lines, "\n")
}

// XrefChange lists declared or cleared references.
type XrefChange struct {
	Xrefs  []xref.Xref
	Action string
}

func (r XrefChange) String() string {
	if len(r.Xrefs) == 0 {
		return r.Action + " no references"
	}
	lines := make([]string, 0, len(r.Xrefs))
	for _, x := range r.Xrefs {
		lines = append(lines, fmt.Sprintf("%s %s", r.Action, x))
	}
	return strings.Join(lines, "\n")
}

// CodeChange is an instruction that was committed or cleared.
type CodeChange struct {
	Address     address.Address
	Instruction *instruction.Instruction // nil when cleared
}

func (r CodeChange) String() string {
	if r.Instruction == nil {
		return fmt.Sprintf("cleared code at %s", r.Address)
	}
	return fmt.Sprintf("code %s: %s%s", r.Address, r.Instruction, targetComment(r.Instruction))
}

// CommentChange is a set or cleared comment.
type CommentChange struct {
	Address address.Address
	Text    string // empty when cleared
}

func (r CommentChange) String() string {
	if r.Text == "" {
		return fmt.Sprintf("cleared comment at %s", r.Address)
	}
	return fmt.Sprintf("comment %s: %s", r.Address, r.Text)
}

// Exported is a written assembly listing.
type Exported struct {
	Path  string
	Start address.Address
	Lines int
}

func (r Exported) String() string {
	return fmt.Sprintf("exported %d listing entries from %s to %s", r.Lines, r.Start, r.Path)
}

// Sweep is the summary of a code sweep.
type Sweep struct {
	analysis.SweepResult
}

func (r Sweep) String() string {
	s := fmt.Sprintf("%d instructions, %d references, %d labels, %d unresolved",
		r.Instructions, r.Xrefs, r.Labels, r.Unresolved)
	if !r.Done && r.Stop != nil {
		s += fmt.Sprintf("\nstopped at %s: %s", r.Next, r.Stop)
	}
	return s
}

// EmptyBanks lists the data blocks created for empty banks.
type EmptyBanks struct {
	Blocks []*disasm.Block
}

func (r EmptyBanks) String() string {
	if len(r.Blocks) == 0 {
		return "no empty banks"
	}
	banks := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		banks[i] = fmt.Sprintf("%d", b.Address.Bank)
	}
	return fmt.Sprintf("%d empty banks: %s", len(r.Blocks), strings.Join(banks, ", "))
}

// Message is a plain text result.
type Message string

func (r Message) String() string {
	return string(r)
}

func contextText(e overrides.Entry) string {
	if e.Kind == overrides.Bank {
		return fmt.Sprintf("bank %d for %s, %d bytes", e.Bank, e.Start, e.Length)
	}
	return fmt.Sprintf("%s for %s, %d bytes", e.Kind, e.Start, e.Length)
}

func opcodeHex(opcode []byte) string {
	parts := make([]string, len(opcode))
	for i, b := range opcode {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func targetComment(ins *instruction.Instruction) string {
	var parts []string
	if ins.Register != "" {
		parts = append(parts, ins.Register)
	}
	if t := ins.Target; t != nil {
		if t.Resolved {
			parts = append(parts, "-> "+t.Address.String())
		} else {
			parts = append(parts, fmt.Sprintf("-> $%04X unresolved", t.CPU))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, " ")
}

func writeDecoded(sb *strings.Builder, r data.Result) {
	if r.Description != "" {
		fmt.Fprintf(sb, "\n  %s", r.Description)
	}

	switch {
	case r.Kind == data.Header:
		for _, f := range r.Fields {
			fmt.Fprintf(sb, "\n  %s=$%0*X", f.Name, f.Type.Size()*2, f.Value)
		}

	case r.Kind == data.Empty:
		fmt.Fprintf(sb, "\n  %d empty bytes", r.Consumed)

	case len(r.Rows) > 0:
		for _, row := range r.Rows {
			fields := make([]string, len(row.Fields))
			for i, f := range row.Fields {
				fields[i] = fmt.Sprintf("%s=$%0*X", f.Name, f.Type.Size()*2, f.Value)
			}
			fmt.Fprintf(sb, "\n  %3d: %s", row.Index, strings.Join(fields, " "))
		}

	case len(r.Colors) > 0:
		for i, c := range r.Colors {
			fmt.Fprintf(sb, "\n  %3d: %s $%04X", i, c, c.BGR555())
		}

	case r.Kind == data.RLE:
		fmt.Fprintf(sb, "\n  %d runs, %d decoded bytes", len(r.Fields), len(r.Decoded))
		writeHexLines(sb, r.Decoded)

	default:
		raw := make([]byte, len(r.Fields))
		for i, f := range r.Fields {
			raw[i] = byte(f.Value)
		}
		writeHexLines(sb, raw)
	}
}

func writeHexLines(sb *strings.Builder, raw []byte) {
	const perLine = 16
	for i := 0; i < len(raw); i += perLine {
		fmt.Fprintf(sb, "\n  %s", opcodeHex(raw[i:min(i+perLine, len(raw))]))
	}
}
