//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphio/usecases/config"
)

// Options are the command line options of graphload. The config flags
// apply to every command.
type Options struct {
	config.Flags

	Load   LoadCommand   `command:"load" description:"load star records into the target store"`
	Export ExportCommand `command:"export" description:"write the target store out as star records"`
}

type LoadCommand struct {
	Input string `long:"input" short:"i" default:"-" description:"record file to load, - reads stdin"`
}

type ExportCommand struct {
	Output string `long:"output" short:"o" default:"-" description:"record file to write, - writes stdout"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger := logrus.New()
	cfg, err := config.LoadConfig(&opts.Flags, logger)
	if err != nil {
		logger.WithField("action", "startup").WithError(err).Fatal("could not load config")
	}
	if err := configureLogger(logger, cfg.Logging); err != nil {
		logger.WithField("action", "startup").WithError(err).Fatal("could not configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	switch parser.Active.Name {
	case "load":
		err = a.run(ctx, func(ctx context.Context, t *target) error {
			return a.load(ctx, opts.Load.Input, t)
		})
	case "export":
		err = a.run(ctx, func(ctx context.Context, t *target) error {
			return a.export(ctx, opts.Export.Output, t)
		})
	}
	if err != nil {
		logger.WithField("action", parser.Active.Name).WithError(err).Fatal("graphload failed")
	}
}
