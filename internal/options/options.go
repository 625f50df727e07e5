// Package options contains the program options.
package options

import (
	"github.com/retroenv/gbdisasm/internal/history"
)

// Parameters contains file path options.
type Parameters struct {
	Input   string `arg:"positional" usage:"ROM file to analyze"`
	Project string `flag:"project" usage:"project file to load"`
	Script  string `flag:"script" usage:"Lua script to run instead of the interactive shell"`
	Save    string `flag:"sav" usage:"battery save (SRAM) image to load"`
	Output  string `flag:"save" usage:"project file to write on exit"`
}

// Flags contains behavior options.
type Flags struct {
	Debug bool `flag:"debug" usage:"enable debug logging"`
	Quiet bool `flag:"q" usage:"quiet mode"`
}

// Program options of the workbench.
type Program struct {
	Parameters
	Flags
}

// Workbench defines options to control an analysis session.
type Workbench struct {
	HistoryLimit int    // maximum number of navigation history entries
	SweepLabels  bool   // label reference targets during code sweeps
	Workers      int    // parallel decoders of code sweeps, 0 uses all CPUs
	ProjectFile  string // default file of project save and load

	HexComments    bool // output opcode bytes as comments in exported listings
	OffsetComments bool // output addresses as comments in exported listings
}

// NewWorkbench returns a new options instance with default options.
func NewWorkbench() Workbench {
	return Workbench{
		HistoryLimit: history.DefaultLimit,
		SweepLabels:  true,

		HexComments:    true,
		OffsetComments: true,
	}
}
