package reporter

import (
	"context"
	"testing"
	"time"

	"github.com/adoreport/adoreport/azure"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRunManager(svc Service) (*RunManager, *Guard) {
	guard := NewGuard(zerolog.Nop())
	return NewRunManager(zerolog.Nop(), svc, guard, "Shop", 4), guard
}

func TestRunManager_CreateRun(t *testing.T) {
	svc := newFakeService(4)
	m, guard := newTestRunManager(svc)
	require.Equal(t, RunUninitialized, m.State())

	id, ok := m.CreateRun(context.Background(), "Nightly")
	require.True(t, ok)
	require.Equal(t, 77, id)
	require.Equal(t, RunActive, m.State())
	require.False(t, guard.Tripped())

	require.Len(t, svc.runs, 1)
	require.Equal(t, azure.RunCreateModel{
		Name:             "Nightly",
		Automated:        true,
		ConfigurationIDs: []int{1},
		Plan:             &azure.ShallowReference{ID: "4"},
	}, svc.runs[0])

	// The id is assigned once.
	id, ok = m.CreateRun(context.Background(), "Again")
	require.True(t, ok)
	require.Equal(t, 77, id)
	require.Len(t, svc.runs, 1)
}

func TestRunManager_CreateRunFailures(t *testing.T) {
	tests := []struct {
		name      string
		createRun func(azure.RunCreateModel) (*azure.TestRun, error)
	}{
		{name: "error", createRun: func(azure.RunCreateModel) (*azure.TestRun, error) { return nil, errBoom }},
		{name: "empty response", createRun: func(azure.RunCreateModel) (*azure.TestRun, error) { return nil, nil }},
		{name: "zero id", createRun: func(azure.RunCreateModel) (*azure.TestRun, error) { return &azure.TestRun{}, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(4)
			svc.createRun = tt.createRun
			m, guard := newTestRunManager(svc)

			_, ok := m.CreateRun(context.Background(), "Nightly")
			require.False(t, ok)
			require.True(t, guard.Tripped())
			require.Equal(t, RunDisabled, m.State())

			_, ok = m.RunID()
			require.False(t, ok)
		})
	}
}

func TestRunManager_EnsureProject(t *testing.T) {
	svc := newFakeService(4)
	m, guard := newTestRunManager(svc)
	require.NoError(t, m.EnsureProject(context.Background(), "Shop"))
	require.False(t, guard.Tripped())

	svc = newFakeService(4)
	svc.getProject = func(string) (*azure.TeamProject, error) { return nil, nil }
	m, guard = newTestRunManager(svc)
	require.Error(t, m.EnsureProject(context.Background(), "Shop"))
	require.True(t, guard.Tripped())
	require.Contains(t, guard.Reason(), "Project Shop does not exist")

	svc = newFakeService(4)
	svc.getProject = func(string) (*azure.TeamProject, error) { return nil, errBoom }
	m, guard = newTestRunManager(svc)
	require.ErrorIs(t, m.EnsureProject(context.Background(), "Shop"), errBoom)
	require.True(t, guard.Tripped())
}

func TestRunManager_WaitForRunID(t *testing.T) {
	svc := newFakeService(4)
	m, _ := newTestRunManager(svc)

	got := make(chan int, 3)
	for i := 0; i < 3; i++ {
		go func() {
			id, _ := m.WaitForRunID(context.Background(), 5*time.Second)
			got <- id
		}()
	}

	time.Sleep(20 * time.Millisecond)
	_, ok := m.CreateRun(context.Background(), "Nightly")
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		select {
		case id := <-got:
			require.Equal(t, 77, id)
		case <-time.After(5 * time.Second):
			t.Fatal("waiter was not released")
		}
	}
}

func TestRunManager_WaitForRunIDTimeoutTripsGuard(t *testing.T) {
	m, guard := newTestRunManager(newFakeService(4))

	start := time.Now()
	_, ok := m.WaitForRunID(context.Background(), 30*time.Millisecond)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.True(t, guard.Tripped())
	require.Equal(t, "Timeout while waiting for runId. Reporting is disabled.", guard.Reason())

	// Later waits return immediately.
	_, ok = m.WaitForRunID(context.Background(), time.Hour)
	require.False(t, ok)
}

func TestRunManager_WaitForRunIDReleasedByGuard(t *testing.T) {
	m, guard := newTestRunManager(newFakeService(4))

	done := make(chan bool, 1)
	go func() {
		_, ok := m.WaitForRunID(context.Background(), time.Hour)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	guard.Trip("stop")

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was not released")
	}
}

func TestRunManager_Finalize(t *testing.T) {
	svc := newFakeService(4)
	m, guard := newTestRunManager(svc)

	// Nothing to finalize without a run.
	m.Finalize(context.Background())
	require.Empty(t, svc.Calls())

	_, ok := m.CreateRun(context.Background(), "Nightly")
	require.True(t, ok)

	svc.updateRun = func(string) (*azure.TestRun, error) { return nil, errBoom }
	m.Finalize(context.Background())
	require.False(t, guard.Tripped())
	require.Equal(t, RunCompleted, m.State())

	m.Finalize(context.Background())
	require.Equal(t, []string{"CreateRun", "UpdateRunState"}, svc.Calls())
}
