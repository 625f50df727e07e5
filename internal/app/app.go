// Package app provides the main application helper for the workbench.
package app

import (
	"fmt"
	"strings"

	"github.com/retroenv/gbdisasm/internal/cartridge"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the logger for the workbench. Quiet mode only logs
// errors, which keeps the output of scripts readable.
func CreateLogger(opts options.Flags) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case opts.Debug:
		cfg.Level = log.DebugLevel
	case opts.Quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner prints the program name and version.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("gbdisasm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the input file and the cartridge.
func PrintInfo(logger *log.Logger, opts options.Program, cart *cartridge.Cartridge) {
	if opts.Quiet {
		return
	}

	logger.Info("Processing Game Boy ROM",
		log.String("file", opts.Input),
		log.String("title", cart.Header.Title),
		log.String("type", cart.Header.TypeName()),
		log.Int("rom_banks", cart.ROMBanks),
		log.Int("ram_banks", cart.RAMBanks),
		log.Hex("crc32", cart.CRC32),
	)
	if cart.Header.CGB {
		logger.Info("Game Boy Color mode enabled, using banked VRAM and WRAM")
	}
	if !cart.VerifyHeaderChecksum() {
		logger.Warn("Cartridge header checksum does not match")
	}
}
