package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adoreport/adoreport/config"
	"github.com/adoreport/adoreport/reporter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "adoreport"

type App struct {
	logger zerolog.Logger
	out    io.Writer
	cli    *cli.App

	// newService builds the client publish talks to
	newService func(cfg config.Configuration) reporter.Service
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	return newApp(logger, os.Stdout)
}

func newApp(logger zerolog.Logger, out io.Writer) *App {
	app := &App{
		logger: logger,
		out:    out,
		cli: &cli.App{
			Name:   AppName,
			Usage:  "Publish test results to Azure DevOps test plans",
			Writer: out,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.newService = app.azureService
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "publish",
		Usage:     "Publish the results of a test run",
		ArgsUsage: "<events.ndjson|report.json|->",
		Action:    app.publish,
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Input format: events (NDJSON lifecycle events), report (Playwright JSON report) or auto",
				Value: formatAuto,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum number of results published at once (0: unlimited)",
				Value: 8,
			},
			historyDirFlag(),
		),
		Description: `Replays the lifecycle events of a test run against Azure DevOps.

Tests are matched to test cases by a "[<case id>]" tag in their title,
e.g. "login works [1234]". Tests without a tag are not published.

Examples:
  adoreport publish results.json                 # Playwright JSON report
  adoreport publish --format events events.ndjson
  my-runner | adoreport publish -                # events streamed on stdin`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "validate",
		Usage:  "Show the resolved configuration and whether reporting is enabled",
		Action: app.validate,
		Flags:  configFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous publish sessions",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Filter by input path",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
			historyDirFlag(),
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Show a single publish session",
		ArgsUsage: "[id|index]",
		Action:    app.view,
		Flags:     []cli.Flag{historyDirFlag()},
		Description: `Shows the target, input and outcome of a recorded publish session.

The session is selected by an id prefix or by an index counting back
from the newest session: 0 is the last one, -1 the one before.
Negative indexes follow "--" so they are not read as flags.

Examples:
  adoreport view                 # last session
  adoreport view -- -1           # second-to-last session
  adoreport view --history-dir /tmp/ci 3f2a9c`,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}
