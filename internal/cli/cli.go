// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/gbdisasm/internal/options"
)

// ParseFlags parses command line flags and returns program and workbench options
func ParseFlags() (options.Program, options.Workbench, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)
	workbench := options.NewWorkbench()
	inverse := readWorkbenchOptionFlags(flags, &workbench)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, workbench, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, workbench, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts, &workbench, *inverse); err != nil {
		return opts, workbench, err
	}
	return opts, workbench, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: gbdisasm [options] <ROM file to analyze>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: "only a single ROM file can be analyzed"}
	}
	return nil
}

// inverseFlags disable options that are enabled by default.
type inverseFlags struct {
	noLabels      bool
	noHexComments bool
	noOffsets     bool
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program, workbench *options.Workbench, inverse inverseFlags) error {
	if workbench.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", workbench.Workers)
	}
	if workbench.HistoryLimit < 1 {
		return fmt.Errorf("invalid history limit %d", workbench.HistoryLimit)
	}

	// Apply inverse logic for sweep labels, hex comments and offsets
	workbench.SweepLabels = !inverse.noLabels
	workbench.HexComments = !inverse.noHexComments
	workbench.OffsetComments = !inverse.noOffsets

	// project commands without a file name use the output file, or the
	// loaded project if no output is given
	workbench.ProjectFile = opts.Output
	if workbench.ProjectFile == "" {
		workbench.ProjectFile = opts.Project
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Project, "project", "", "name of the project file to load")
	flags.StringVar(&opts.Script, "script", "", "run the given Lua script instead of the interactive shell")
	flags.StringVar(&opts.Save, "sav", "", "name of the battery save (SRAM) file to load")
	flags.StringVar(&opts.Output, "save", "", "name of the project file to write on exit")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readWorkbenchOptionFlags(flags *flag.FlagSet, opts *options.Workbench) *inverseFlags {
	var inverse inverseFlags
	flags.IntVar(&opts.Workers, "workers", 0, "number of parallel decoders of code sweeps, 0 uses all CPUs")
	flags.IntVar(&opts.HistoryLimit, "history", opts.HistoryLimit, "maximum number of navigation history entries")
	flags.BoolVar(&inverse.noLabels, "nolabels", false, "do not label reference targets during code sweeps")
	flags.BoolVar(&inverse.noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in exported listings")
	flags.BoolVar(&inverse.noOffsets, "nooffsets", false, "do not output offsets in comments of exported listings")
	return &inverse
}
