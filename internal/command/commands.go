package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/prefixtree"
	"github.com/retroenv/gbdisasm/internal/data"
)

const maxCommentWords = 64

type handler func(s *Session, ctx context.Context, args []string) (Result, error)

// command is a node of the command tree. Leaf nodes have a handler, all
// other nodes select a sub command by the next word.
type command struct {
	name        string
	args        string // argument syntax for the usage text
	description string
	minArgs     int
	maxArgs     int
	handler     handler
	children    []*command

	path string
	tree *prefixtree.Tree
}

func (c *command) syntax() string {
	if c.args == "" {
		return c.path
	}
	return c.path + " " + c.args
}

var (
	commands []*command
	root     *prefixtree.Tree
)

func init() {
	commands = commandTable()
	root = buildTree("", commands)
}

func commandTable() []*command {
	return []*command{
		{name: "seek", args: "<address>", description: "move the cursor", minArgs: 1, maxArgs: 1,
			handler: (*Session).onSeek},
		{name: "back", description: "return to the previous address", handler: (*Session).onBack},
		{name: "forward", description: "redo a return to a previous address", handler: (*Session).onForward},
		{name: "inspect", args: "[address]", description: "show everything known about an address", maxArgs: 1,
			handler: (*Session).onInspect},

		{name: "context", children: []*command{
			{name: "clear", args: "[address]", description: "remove context entries", maxArgs: 1,
				handler: (*Session).onContextClear},
			{name: "set", children: []*command{
				{name: "scalar", args: "[address] [length]", description: "treat operands as values", maxArgs: 2,
					handler: (*Session).onContextScalar},
				{name: "bank", args: "<address> <bank> [length]", description: "pin the bank of operands or targets",
					minArgs: 2, maxArgs: 3, handler: (*Session).onContextBank},
			}},
		}},

		{name: "data", children: []*command{
			{name: "create", children: dataCommands(false)},
			{name: "preview", children: dataCommands(true)},
			{name: "delete", args: "[address]", description: "delete a data block", maxArgs: 1,
				handler: (*Session).onDataDelete},
		}},

		{name: "label", children: []*command{
			{name: "auto", args: "[address]", description: "generate a label from references", maxArgs: 1,
				handler: (*Session).onLabelAuto},
			{name: "create", args: "<name> [address]", description: "create a label", minArgs: 1, maxArgs: 2,
				handler: (*Session).onLabelCreate},
			{name: "delete", args: "<name>", description: "delete a label and its locals", minArgs: 1, maxArgs: 1,
				handler: (*Session).onLabelDelete},
			{name: "rename", args: "<name> <new name>", description: "rename a label", minArgs: 2, maxArgs: 2,
				handler: (*Session).onLabelRename},
		}},

		{name: "xref", children: []*command{
			{name: "auto", args: "[address]", description: "declare the reference of an instruction", maxArgs: 1,
				handler: (*Session).onXrefAuto},
			{name: "clear", args: "[address]", description: "remove references from an address", maxArgs: 1,
				handler: (*Session).onXrefClear},
			{name: "declare", args: "call|jump|read|write <from> <to>", description: "declare a reference",
				minArgs: 3, maxArgs: 3, handler: (*Session).onXrefDeclare},
		}},

		{name: "code", children: []*command{
			{name: "mark", args: "[address]", description: "classify an instruction as code", maxArgs: 1,
				handler: (*Session).onCodeMark},
			{name: "clear", args: "[address]", description: "remove a code classification", maxArgs: 1,
				handler: (*Session).onCodeClear},
		}},

		{name: "comment", children: []*command{
			{name: "set", args: "<address> <text>", description: "attach a comment to an address", minArgs: 2,
				maxArgs: maxCommentWords + 1, handler: (*Session).onCommentSet},
			{name: "clear", args: "[address]", description: "remove a comment", maxArgs: 1,
				handler: (*Session).onCommentClear},
		}},

		{name: "section", children: []*command{
			{name: "create", args: "<name> [address]", description: "start a named section of the export", minArgs: 1,
				maxArgs: 2, handler: (*Session).onSectionCreate},
			{name: "delete", args: "[address]", description: "remove a section", maxArgs: 1,
				handler: (*Session).onSectionDelete},
			{name: "list", description: "list all sections", handler: (*Session).onSectionList},
		}},

		{name: "analyze", children: []*command{
			{name: "sweep", args: "[address] <length>", description: "classify a range as code", minArgs: 1, maxArgs: 2,
				handler: (*Session).onAnalyzeSweep},
			{name: "empty", description: "classify empty ROM banks as data", handler: (*Session).onAnalyzeEmpty},
		}},

		{name: "project", children: []*command{
			{name: "save", args: "[file]", description: "save the project", maxArgs: 1, handler: (*Session).onProjectSave},
			{name: "load", args: "[file]", description: "load a project", maxArgs: 1, handler: (*Session).onProjectLoad},
		}},

		{name: "export", args: "<file> [address] [length]", description: "write an RGBDS listing of a ROM range",
			minArgs: 1, maxArgs: 3, handler: (*Session).onExport},

		{name: "script", children: []*command{
			{name: "run", args: "<file>", description: "run a Lua script", minArgs: 1, maxArgs: 1,
				handler: (*Session).onScriptRun},
		}},

		{name: "help", description: "list all commands", handler: (*Session).onHelp},
		{name: "quit", description: "leave the workbench", handler: (*Session).onQuit},
	}
}

func dataCommands(preview bool) []*command {
	specs := []struct {
		kind    data.Kind
		args    string
		minArgs int
		maxArgs int
	}{
		{data.Simple, "[address] <length>", 1, 2},
		{data.RLE, "[address] [decoded length]", 0, 2},
		{data.Palette, "[address] [length]", 0, 2},
		{data.Table, "[address] <rows> <fields>", 2, 3},
		{data.JumpTable, "[address] [rows]", 0, 2},
		{data.Header, "[address]", 0, 1},
		{data.SGB, "[address]", 0, 1},
		{data.Empty, "[address] [length]", 0, 2},
	}

	cmds := make([]*command, 0, len(specs))
	for _, spec := range specs {
		description := "create a " + spec.kind.String() + " data block"
		if preview {
			description = "decode a " + spec.kind.String() + " data block without creating it"
		}
		cmds = append(cmds, &command{
			name:        spec.kind.String(),
			args:        spec.args,
			description: description,
			minArgs:     spec.minArgs,
			maxArgs:     spec.maxArgs,
			handler:     dataHandler(spec.kind, preview),
		})
	}
	return cmds
}

func buildTree(parent string, cmds []*command) *prefixtree.Tree {
	tree := prefixtree.New()
	for _, c := range cmds {
		c.path = strings.TrimSpace(parent + " " + c.name)
		if len(c.children) > 0 {
			c.tree = buildTree(c.path, c.children)
		}
		tree.Add(c.name, c)
	}
	return tree
}

// find returns the command selected by the leading words, each word can be
// an unambiguous abbreviation. The remaining words are returned as arguments.
func find(words []string) (*command, []string, error) {
	tree := root
	var path []string

	for i, word := range words {
		path = append(path, word)
		v, err := tree.Find(strings.ToLower(word))
		switch {
		case errors.Is(err, prefixtree.ErrPrefixNotFound):
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, strings.Join(path, " "))
		case errors.Is(err, prefixtree.ErrPrefixAmbiguous):
			return nil, nil, fmt.Errorf("%w: %s", ErrAmbiguousCommand, strings.Join(path, " "))
		case err != nil:
			return nil, nil, fmt.Errorf("finding command: %w", err)
		}

		c := v.(*command)
		if c.tree == nil {
			return c, words[i+1:], nil
		}
		tree = c.tree
	}
	return nil, nil, fmt.Errorf("%w: %s needs a sub command", ErrUnknownCommand, strings.Join(path, " "))
}

// leaves returns all executable commands in table order.
func leaves(cmds []*command) []*command {
	var result []*command
	for _, c := range cmds {
		if c.handler != nil {
			result = append(result, c)
		}
		result = append(result, leaves(c.children)...)
	}
	return result
}
