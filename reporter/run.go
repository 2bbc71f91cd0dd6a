package reporter

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adoreport/adoreport/azure"
	"github.com/rs/zerolog"
)

// RunState is the lifecycle state of the remote run.
type RunState int32

const (
	RunUninitialized RunState = iota
	RunAwaitingID
	RunActive
	RunCompleted
	RunDisabled
)

func (s RunState) String() string {
	switch s {
	case RunUninitialized:
		return "uninitialized"
	case RunAwaitingID:
		return "awaiting-run-id"
	case RunActive:
		return "active"
	case RunCompleted:
		return "completed"
	case RunDisabled:
		return "disabled"
	}
	return "unknown"
}

// configurationID is the test configuration every run is created against.
const configurationID = 1

// RunManager creates the remote run, hands out its id and completes it.
type RunManager struct {
	logger  zerolog.Logger
	svc     Service
	guard   *Guard
	project string
	planID  int

	state atomic.Int32
	runID atomic.Int64
	once  sync.Once
	ready chan struct{}
}

func NewRunManager(logger zerolog.Logger, svc Service, guard *Guard, project string, planID int) *RunManager {
	return &RunManager{
		logger:  logger,
		svc:     svc,
		guard:   guard,
		project: project,
		planID:  planID,
		ready:   make(chan struct{}),
	}
}

// State returns the current state. A tripped guard overrides everything
// but a completed run.
func (m *RunManager) State() RunState {
	s := RunState(m.state.Load())
	if s != RunCompleted && m.guard.Tripped() {
		return RunDisabled
	}
	return s
}

// RunID returns the run id once it has been assigned.
func (m *RunManager) RunID() (int, bool) {
	id := m.runID.Load()
	return int(id), id != 0
}

// EnsureProject checks the project exists. Any failure trips the guard.
func (m *RunManager) EnsureProject(ctx context.Context, name string) error {
	if m.guard.Tripped() {
		return fmt.Errorf("reporting is disabled")
	}
	project, err := m.svc.GetProject(ctx, name)
	if err != nil {
		m.guard.Trip(fmt.Sprintf("Failed to get project %s: %v. Check your token and orgUrl. Reporting is disabled.", name, err))
		return err
	}
	if project == nil {
		err := fmt.Errorf("project %s does not exist", name)
		m.guard.Trip(fmt.Sprintf("Project %s does not exist. Reporting is disabled.", name))
		return err
	}
	m.logger.Debug().Str("project", project.Name).Str("id", project.ID).Msg("Found project")
	return nil
}

// CreateRun creates the remote run and publishes its id to waiters.
// On failure the guard is tripped and false is returned. The id is
// assigned at most once; later calls return it without a remote call.
func (m *RunManager) CreateRun(ctx context.Context, title string) (int, bool) {
	if id, ok := m.RunID(); ok {
		return id, true
	}
	if m.guard.Tripped() {
		return 0, false
	}
	m.state.CompareAndSwap(int32(RunUninitialized), int32(RunAwaitingID))

	run, err := m.svc.CreateRun(ctx, azure.RunCreateModel{
		Name:             title,
		Automated:        true,
		ConfigurationIDs: []int{configurationID},
		Plan:             &azure.ShallowReference{ID: strconv.Itoa(m.planID)},
	}, m.project)
	if err != nil {
		m.guard.Trip(fmt.Sprintf("Failed to create test run: %v. Check your token and orgUrl. Reporting is disabled.", err))
		return 0, false
	}
	if run == nil || run.ID == 0 {
		m.guard.Trip("Failed to create test run. Reporting is disabled.")
		return 0, false
	}

	m.once.Do(func() {
		m.runID.Store(int64(run.ID))
		m.state.Store(int32(RunActive))
		close(m.ready)
	})
	id, _ := m.RunID()
	m.logger.Info().Int("run", id).Msgf("Using run %d to publish test results", id)
	return id, true
}

// WaitForRunID blocks until the run id is assigned, the guard trips, ctx
// ends or timeout elapses. Hitting the timeout trips the guard.
func (m *RunManager) WaitForRunID(ctx context.Context, timeout time.Duration) (int, bool) {
	if m.guard.Tripped() {
		return 0, false
	}
	if id, ok := m.RunID(); ok {
		return id, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-m.ready:
		return m.RunID()
	case <-m.guard.Done():
		return 0, false
	case <-ctx.Done():
		return 0, false
	case <-timer.C:
		if id, ok := m.RunID(); ok {
			return id, true
		}
		m.guard.Trip("Timeout while waiting for runId. Reporting is disabled.")
		return 0, false
	}
}

// Finalize marks the run completed. Errors are logged only.
func (m *RunManager) Finalize(ctx context.Context) {
	id, ok := m.RunID()
	if !ok {
		return
	}
	if !m.state.CompareAndSwap(int32(RunActive), int32(RunCompleted)) {
		return
	}

	run, err := m.svc.UpdateRunState(ctx, m.project, id, azure.RunStateCompleted)
	if err != nil {
		m.logger.Error().Err(err).Int("run", id).Msg("Error on completing run")
		return
	}
	state := azure.RunStateCompleted
	if run != nil && run.State != "" {
		state = run.State
	}
	m.logger.Info().Int("run", id).Str("state", state).Msgf("Run %d - %s", id, state)
}
