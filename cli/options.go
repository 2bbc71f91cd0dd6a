package cli

// This file contains the reporter option flags shared by publish and
// validate, and their merge with an optional config file.

import (
	"github.com/adoreport/adoreport/config"
	"github.com/urfave/cli/v2"
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML or TOML file with reporter options",
			EnvVars: []string{"ADO_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "org-url",
			Usage:   "Azure DevOps organization URL (e.g. https://dev.azure.com/acme)",
			EnvVars: []string{"ADO_ORG_URL"},
		},
		&cli.StringFlag{
			Name:    "project",
			Usage:   "Azure DevOps project name",
			EnvVars: []string{"ADO_PROJECT"},
		},
		&cli.IntFlag{
			Name:    "plan-id",
			Usage:   "Test plan the results are published to",
			EnvVars: []string{"ADO_PLAN_ID"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Personal access token",
			EnvVars: []string{"ADO_TOKEN"},
		},
		&cli.BoolFlag{
			Name:    "disabled",
			Usage:   "Disable publishing",
			EnvVars: []string{"ADO_DISABLED"},
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Environment prefix of the run title",
			EnvVars: []string{"ADO_ENVIRONMENT"},
		},
		&cli.StringFlag{
			Name:    "run-title",
			Usage:   "Title of the test run",
			EnvVars: []string{"ADO_RUN_TITLE"},
		},
		&cli.BoolFlag{
			Name:  "upload-attachments",
			Usage: "Upload test attachments",
		},
		&cli.StringSliceFlag{
			Name:  "attachments-type",
			Usage: "Attachment kinds to upload: screenshot, video, trace",
		},
		&cli.BoolFlag{
			Name:    "logging",
			Usage:   "Log progress of the publishing pipeline (warnings and errors are always logged)",
			EnvVars: []string{"ADO_LOGGING"},
		},
		&cli.DurationFlag{
			Name:  "run-id-timeout",
			Usage: "How long results wait for the test run to be created",
		},
		&cli.DurationFlag{
			Name:  "drain-timeout",
			Usage: "How long the end of the run waits for pending results (0: no limit)",
		},
		&cli.DurationFlag{
			Name:  "request-timeout",
			Usage: "Timeout of a single Azure DevOps request (0: no limit)",
		},
	}
}

// loadOptions reads the config file, if any, and overlays every flag
// that was set on the command line or through the environment.
func (a *App) loadOptions(ctx *cli.Context) (config.Options, error) {
	var opts config.Options
	if path := ctx.String("config"); path != "" {
		var err error
		if opts, err = config.Load(path); err != nil {
			return opts, err
		}
		a.logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	if ctx.IsSet("org-url") {
		opts.OrgURL = ctx.String("org-url")
	}
	if ctx.IsSet("project") {
		opts.ProjectName = ctx.String("project")
	}
	if ctx.IsSet("plan-id") {
		opts.PlanID = ctx.Int("plan-id")
	}
	if ctx.IsSet("token") {
		opts.Token = ctx.String("token")
	}
	if ctx.IsSet("disabled") {
		opts.IsDisabled = ctx.Bool("disabled")
	}
	if ctx.IsSet("environment") {
		opts.Environment = ctx.String("environment")
	}
	if ctx.IsSet("run-title") {
		opts.TestRunTitle = ctx.String("run-title")
	}
	if ctx.IsSet("upload-attachments") {
		opts.UploadAttachments = ctx.Bool("upload-attachments")
	}
	if ctx.IsSet("attachments-type") {
		opts.AttachmentsType = ctx.StringSlice("attachments-type")
	}
	if ctx.IsSet("logging") {
		opts.Logging = ctx.Bool("logging")
	}
	if ctx.IsSet("run-id-timeout") {
		opts.RunIDTimeout = ctx.Duration("run-id-timeout").String()
	}
	if ctx.IsSet("drain-timeout") {
		opts.DrainTimeout = ctx.Duration("drain-timeout").String()
	}
	if ctx.IsSet("request-timeout") {
		opts.RequestTimeout = ctx.Duration("request-timeout").String()
	}
	return opts, nil
}

// resolveConfig loads and validates the reporter configuration, logging
// every warning.
func (a *App) resolveConfig(ctx *cli.Context) (config.Configuration, error) {
	opts, err := a.loadOptions(ctx)
	if err != nil {
		return config.Configuration{}, err
	}
	cfg, warnings := opts.Resolve()
	for _, w := range warnings {
		a.logger.Warn().Msg(w)
	}
	return cfg, nil
}
