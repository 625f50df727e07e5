// Package main implements the main entry point for the Game Boy reverse engineering workbench
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/gbdisasm/internal/app"
	"github.com/retroenv/gbdisasm/internal/cli"
	"github.com/retroenv/gbdisasm/internal/pipeline"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, workbench, err := cli.ParseFlags()
	if err != nil {
		logger := app.CreateLogger(opts.Flags)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := app.CreateLogger(opts.Flags)
	app.PrintBanner(logger, opts, version, commit, date)

	p := pipeline.New(logger)
	if _, err := p.Execute(ctx, opts, workbench, os.Stdin, os.Stdout); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal("Workbench session failed", log.Err(err))
	}
}
