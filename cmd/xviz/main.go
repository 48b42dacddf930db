// Package main is the xviz command line tool.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/xviz/logging"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagScope    = "scope"
	flagFrame    = "frame"
	flagTime     = "time"
	flagDocument = "document"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "xviz",
		Usage: "convert and inspect XVIZ logs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert a ROS bag into an XVIZ log",
				UsageText: "xviz convert --config <file>",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:      flagConfig,
						Aliases:   []string{"c"},
						Usage:     "Load conversion configuration from `FILE`",
						Required:  true,
						TakesFile: true,
					},
				},
				Action: convertAction,
			},
			{
				Name:      "inspect",
				Usage:     "print the metadata and frame index of an XVIZ log",
				ArgsUsage: "<log directory>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagScope,
						Usage: "scope the log was written under",
					},
					&cli.IntFlag{
						Name:  flagFrame,
						Usage: "also print frame `N` as JSON",
						Value: -1,
					},
					&cli.Float64Flag{
						Name:  flagTime,
						Usage: "also print the frame covering time `T` as JSON",
						Value: -1,
					},
				},
				Action: inspectAction,
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of an XVIZ document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagDocument,
						Usage: "document to describe, one of envelope, frame_index, metadata, state_update",
						Value: "envelope",
					},
				},
				Action: schemaAction,
			},
		},
	}
}
