package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/gbdisasm/internal/history"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      options.Program
		workbench options.Workbench
	}{
		{
			name: "default flags",
			args: []string{"prog", "test.gb"},
			want: options.Program{Parameters: options.Parameters{Input: "test.gb"}},
			workbench: options.Workbench{
				HistoryLimit: history.DefaultLimit,
				SweepLabels:  true,

				HexComments:    true,
				OffsetComments: true,
			},
		},
		{
			name: "project flags",
			args: []string{"prog", "-project", "in.gbproj", "-save", "out.gbproj", "-sav", "test.sav", "test.gb"},
			want: options.Program{Parameters: options.Parameters{
				Input:   "test.gb",
				Project: "in.gbproj",
				Save:    "test.sav",
				Output:  "out.gbproj",
			}},
			workbench: options.Workbench{
				HistoryLimit: history.DefaultLimit,
				SweepLabels:  true,
				ProjectFile:  "out.gbproj",

				HexComments:    true,
				OffsetComments: true,
			},
		},
		{
			name: "project file defaults to loaded project",
			args: []string{"prog", "-project", "in.gbproj", "test.gb"},
			want: options.Program{Parameters: options.Parameters{Input: "test.gb", Project: "in.gbproj"}},
			workbench: options.Workbench{
				HistoryLimit: history.DefaultLimit,
				SweepLabels:  true,
				ProjectFile:  "in.gbproj",

				HexComments:    true,
				OffsetComments: true,
			},
		},
		{
			name: "workbench flags",
			args: []string{"prog", "-nolabels", "-nohexcomments", "-workers", "2", "-history", "10", "-q", "-script", "run.lua", "test.gb"},
			want: options.Program{
				Parameters: options.Parameters{Input: "test.gb", Script: "run.lua"},
				Flags:      options.Flags{Quiet: true},
			},
			workbench: options.Workbench{
				HistoryLimit:   10,
				Workers:        2,
				OffsetComments: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			opts, workbench, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, opts)
			assert.Equal(t, tt.workbench, workbench)
		})
	}
}

func TestParseFlagsUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "missing ROM file",
			args: []string{"prog", "-debug"},
		},
		{
			name: "flag after ROM file",
			args: []string{"prog", "test.gb", "-debug"},
		},
		{
			name: "multiple ROM files",
			args: []string{"prog", "a.gb", "b.gb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			_, _, err := ParseFlags()
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	tests := []struct {
		name        string
		workbench   options.Workbench
		expectError bool
	}{
		{
			name:      "valid",
			workbench: options.NewWorkbench(),
		},
		{
			name:        "negative workers",
			workbench:   options.Workbench{HistoryLimit: 1, Workers: -1},
			expectError: true,
		},
		{
			name:        "empty history",
			workbench:   options.Workbench{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts options.Program
			err := normalizeOptions(&opts, &tt.workbench, inverseFlags{})
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
