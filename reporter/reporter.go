// Package reporter publishes test results to an Azure DevOps test run.
//
// A Reporter is driven by the three lifecycle events of a test runner:
// OnBegin creates the remote run, OnTestEnd publishes one result and OnEnd
// waits for outstanding publications before completing the run. OnTestEnd
// may be called concurrently, also while OnBegin is still running. None of
// the lifecycle methods return errors: failures disable reporting or skip
// a single result, they never fail the test run.
package reporter

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/adoreport/adoreport/azure"
	"github.com/adoreport/adoreport/config"
	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
)

// Stats is a snapshot of what a Reporter has done so far.
type Stats struct {
	RunID     int
	State     RunState
	Published int64
	Skipped   int64
	Failed    int64
	Pending   int
	// DisabledReason is set once publishing has been switched off
	DisabledReason string
}

type Reporter struct {
	logger zerolog.Logger
	cfg    config.Configuration
	svc    Service

	guard       *Guard
	runs        *RunManager
	points      *PointResolver
	attachments *AttachmentUploader
	queue       *Coordinator

	published atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// New creates a Reporter. svc may be nil when cfg is disabled.
// Unless cfg.Logging is set only warnings and errors are logged.
func New(logger zerolog.Logger, cfg config.Configuration, svc Service) *Reporter {
	logger = logger.With().Str("component", "azure").Logger()
	if !cfg.Logging {
		logger = logger.Level(zerolog.WarnLevel)
	}

	if cfg.RunIDTimeout <= 0 {
		cfg.RunIDTimeout = config.DefaultRunIDTimeout
	}

	guard := NewGuard(logger)
	if cfg.Disabled {
		guard.disable(cfg.DisabledReason)
	}

	r := &Reporter{
		logger: logger,
		cfg:    cfg,
		svc:    svc,
		guard:  guard,
		runs:   NewRunManager(logger, svc, guard, cfg.ProjectName, cfg.PlanID),
		points: NewPointResolver(svc, cfg.ProjectName),
		queue:  NewCoordinator(logger),
	}
	if cfg.UploadAttachments {
		r.attachments = NewAttachmentUploader(logger, svc, cfg.ProjectName, cfg.AttachmentTypes)
	}
	return r
}

// PrintsToStdio reports that the reporter writes to the console itself.
func (r *Reporter) PrintsToStdio() bool {
	return true
}

// Disabled reports whether publishing has been switched off.
func (r *Reporter) Disabled() bool {
	return r.guard.Tripped()
}

func (r *Reporter) Stats() Stats {
	id, _ := r.runs.RunID()
	return Stats{
		RunID:     id,
		State:     r.runs.State(),
		Published: r.published.Load(),
		Skipped:   r.skipped.Load(),
		Failed:    r.failed.Load(),
		Pending:   r.queue.Pending(),

		DisabledReason: r.guard.Reason(),
	}
}

// OnBegin creates the remote run.
func (r *Reporter) OnBegin(ctx context.Context) {
	defer r.recoverPanic("onBegin", func(v any) {
		r.guard.Trip(fmt.Sprintf("Failed to create test run: %v. Reporting is disabled.", v))
	})

	if r.guard.Tripped() {
		return
	}
	if err := r.runs.EnsureProject(ctx, r.cfg.ProjectName); err != nil {
		return
	}
	r.runs.CreateRun(ctx, r.cfg.RunTitle)
}

// OnTestEnd publishes the result of test.
func (r *Reporter) OnTestEnd(ctx context.Context, test model.TestCase, result model.TestResult) {
	defer r.recoverPanic("onTestEnd", func(any) {
		r.failed.Add(1)
	})

	if _, ok := r.runs.WaitForRunID(ctx, r.cfg.RunIDTimeout); !ok {
		return
	}
	if r.guard.Tripped() {
		return
	}

	r.logger.Info().Str("status", string(result.Status)).Msgf("Test %s - %s", test.Title, result.Status)
	r.publish(ctx, test, result)
}

// OnEnd waits for pending publications and completes the run. When the
// configured DrainTimeout elapses first the run is completed anyway; when
// ctx itself ends the run is left open.
func (r *Reporter) OnEnd(ctx context.Context) {
	defer r.recoverPanic("onEnd", nil)

	if _, ok := r.runs.WaitForRunID(ctx, r.cfg.RunIDTimeout); !ok {
		if r.published.Load() == 0 {
			r.logger.Info().Msg("No testcases were matched. Ensure that your tests are declared correctly.")
		}
		return
	}

	drainCtx := ctx
	if r.cfg.DrainTimeout > 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(ctx, r.cfg.DrainTimeout)
		defer cancel()
	}
	if err := r.queue.Drain(drainCtx); err != nil {
		if ctx.Err() != nil {
			r.logger.Warn().Err(err).Int("pending", r.queue.Pending()).Msg("Interrupted, run left open with results still pending")
			return
		}
		r.logger.Warn().Err(err).Int("pending", r.queue.Pending()).Msg("Completing run with results still pending")
	}

	r.runs.Finalize(context.WithoutCancel(ctx))
}

func (r *Reporter) publish(ctx context.Context, test model.TestCase, result model.TestResult) {
	tag := ExtractCaseID(test.Title)
	if tag == "" {
		r.skipped.Add(1)
		r.logger.Debug().Str("test", test.Title).Msg("No case id, not published")
		return
	}

	outcome, ok := remoteOutcome(result.Status)
	if !ok {
		r.skipped.Add(1)
		r.logger.Info().Str("test", test.Title).Str("status", string(result.Status)).Msg("Status has no remote outcome, not published")
		return
	}

	pub := r.queue.Enqueue(PublicationKey{CaseID: tag, TestID: test.ID, Title: test.Title})
	defer pub.Done()

	r.logger.Info().Msgf("Start publishing: %s", test.Title)

	caseIDs, err := ParseCaseIDs(tag)
	if err != nil {
		r.fail(test, err)
		return
	}

	pointID, err := r.points.Resolve(ctx, r.cfg.PlanID, caseIDs[:1])
	if err != nil {
		r.fail(test, err)
		return
	}

	runID, _ := r.runs.RunID()
	submitted, err := r.svc.SubmitResults(ctx, []azure.TestCaseResult{
		newCaseResult(test, result, caseIDs[0], pointID, outcome),
	}, r.cfg.ProjectName, runID)
	if err != nil {
		r.fail(test, err)
		return
	}

	if r.attachments != nil && len(result.Attachments) > 0 {
		if len(submitted) == 0 || submitted[0].ID == 0 {
			r.logger.Error().Str("test", test.Title).Msg("Result id missing from response, attachments not uploaded")
		} else {
			r.attachments.Upload(ctx, result, runID, submitted[0].ID, tag)
		}
	}

	r.published.Add(1)
	r.logger.Info().Msgf("Result published: %s", test.Title)
}

func (r *Reporter) fail(test model.TestCase, err error) {
	r.failed.Add(1)
	r.logger.Error().Err(err).Str("test", test.Title).Msg("Failed to publish result")
}

// recoverPanic keeps panics inside the pipeline from reaching the test runner.
func (r *Reporter) recoverPanic(op string, onPanic func(any)) {
	v := recover()
	if v == nil {
		return
	}
	r.logger.Error().Str("op", op).Interface("panic", v).Msg("Reporter panicked")
	if onPanic != nil {
		onPanic(v)
	}
}
