package cli

// This file contains the publish command, which replays a test run
// against Azure DevOps and records the session in the history.

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/adoreport/adoreport/azure"
	"github.com/adoreport/adoreport/config"
	"github.com/adoreport/adoreport/events"
	"github.com/adoreport/adoreport/model"
	"github.com/adoreport/adoreport/reporter"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

const (
	formatAuto   = "auto"
	formatEvents = "events"
	formatReport = "report"
)

// detectFormat resolves the input format. In auto mode .json files are
// read as Playwright reports, everything else as an event stream.
func detectFormat(format, input string) (string, error) {
	switch format {
	case formatEvents, formatReport:
		return format, nil
	case "", formatAuto:
		if input != "-" && strings.EqualFold(filepath.Ext(input), ".json") {
			return formatReport, nil
		}
		return formatEvents, nil
	}
	return "", fmt.Errorf("unknown input format %q: use %s, %s or %s", format, formatEvents, formatReport, formatAuto)
}

func (a *App) openSource(input, format string) (events.Source, func(), error) {
	var r io.Reader = os.Stdin
	baseDir := ""
	closeFn := func() {}

	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		r = f
		closeFn = func() { f.Close() }
		if abs, err := filepath.Abs(input); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	if format == formatReport {
		defer closeFn()
		evs, err := events.ParseReport(r, baseDir)
		if err != nil {
			return nil, nil, err
		}
		return events.NewSliceSource(evs), func() {}, nil
	}

	dec, err := events.NewDecoder(a.logger, r, baseDir)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return dec, func() {
		if n := dec.Skipped(); n > 0 {
			a.logger.Warn().Int("lines", n).Msg("Skipped invalid events")
		}
		closeFn()
	}, nil
}

// azureService connects to the organization named by cfg.
func (a *App) azureService(cfg config.Configuration) reporter.Service {
	return azure.New(a.logger, cfg.OrgURL, cfg.Token, azure.WithRequestTimeout(cfg.RequestTimeout))
}

func (a *App) publish(ctx *cli.Context) error {
	startTime := time.Now()

	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one input: an events file, a report file or '-' for stdin")
	}
	input := ctx.Args().First()

	format, err := detectFormat(ctx.String("format"), input)
	if err != nil {
		return err
	}

	cfg, err := a.resolveConfig(ctx)
	if err != nil {
		return err
	}

	src, closeSource, err := a.openSource(input, format)
	if err != nil {
		return err
	}
	defer closeSource()

	var svc reporter.Service
	if !cfg.Disabled {
		svc = a.newService(cfg)
	}
	rep := reporter.New(a.logger, cfg, svc)

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()

	replayStats, replayErr := events.Replay(runCtx, a.logger, rep, src, ctx.Int("concurrency"))
	if replayErr != nil {
		a.logger.Error().Err(replayErr).Msg("Replay stopped early")
	}
	stats := rep.Stats()
	if rep.Disabled() && !cfg.Disabled {
		a.logger.Warn().Str("reason", stats.DisabledReason).Msg("Publishing was disabled during the run")
	}

	h := &model.History{
		ID:        uuid.NewString(),
		Timestamp: startTime,
		Args:      os.Args,
		Target: &model.Target{
			OrgURL:      cfg.OrgURL,
			ProjectName: cfg.ProjectName,
			PlanID:      cfg.PlanID,
			RunTitle:    cfg.RunTitle,
		},
		Input: &model.Input{
			Path:   input,
			Format: format,
			Tests:  replayStats.Tests,

			SynthesizedBegin: replayStats.SynthesizedBegin,
			SynthesizedEnd:   replayStats.SynthesizedEnd,
		},
		Publish: &model.Publish{
			RunID:     stats.RunID,
			State:     stats.State.String(),
			Published: stats.Published,
			Skipped:   stats.Skipped,
			Failed:    stats.Failed,

			DisabledReason: stats.DisabledReason,
		},
		Duration: time.Since(startTime),
	}
	if git, err := a.getGitInfo(); err == nil {
		h.Git = git
	}

	// Recording is best effort
	if err := a.recordHistory(ctx, h); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record history")
	}

	a.printSummary(h)
	return replayErr
}

func (a *App) printSummary(h *model.History) {
	p := h.Publish
	fmt.Fprintf(a.out, "Published %d of %d tests (skipped %d, failed %d)", p.Published, h.Input.Tests, p.Skipped, p.Failed)
	if p.RunID != 0 {
		fmt.Fprintf(a.out, " to run %d [%s]", p.RunID, p.State)
	} else {
		fmt.Fprintf(a.out, " [%s]", p.State)
	}
	fmt.Fprintln(a.out)
}
