// Package azure adapts the Azure DevOps Core and Test clients of
// azure-devops-go-api to the value types used by the reporter.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/test"
	"github.com/rs/zerolog"
)

// StatusCode returns the HTTP status carried by an Azure DevOps error, or 0.
func StatusCode(err error) int {
	var ptr *azuredevops.WrappedError
	if errors.As(err, &ptr) && ptr != nil && ptr.StatusCode != nil {
		return *ptr.StatusCode
	}
	var val azuredevops.WrappedError
	if errors.As(err, &val) && val.StatusCode != nil {
		return *val.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an Azure DevOps error with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Client talks to a single Azure DevOps organization using a personal access token.
type Client struct {
	logger  zerolog.Logger
	conn    *azuredevops.Connection
	timeout time.Duration

	mu   sync.Mutex
	core core.Client
	test test.Client
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithRequestTimeout bounds every request. Zero disables the deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClients replaces the SDK clients, which are otherwise created on first use.
func WithClients(coreClient core.Client, testClient test.Client) Option {
	return func(c *Client) {
		c.core = coreClient
		c.test = testClient
	}
}

// New creates a client for the organization at orgURL
// (e.g. https://dev.azure.com/acme).
func New(logger zerolog.Logger, orgURL, token string, opts ...Option) *Client {
	c := &Client{
		logger: logger,
		conn:   azuredevops.NewPatConnection(strings.TrimRight(orgURL, "/"), token),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// clients creates the SDK clients. Area discovery needs a round trip, so a
// failed attempt is retried on the next call.
func (c *Client) clients(ctx context.Context) (core.Client, test.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.core == nil {
		coreClient, err := core.NewClient(ctx, c.conn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", c.conn.BaseUrl, err)
		}
		c.core = coreClient
	}
	if c.test == nil {
		testClient, err := test.NewClient(ctx, c.conn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", c.conn.BaseUrl, err)
		}
		c.test = testClient
	}
	return c.core, c.test, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) trace(op string, start time.Time, err error) {
	c.logger.Debug().
		Str("op", op).
		Int("status", StatusCode(err)).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("Azure DevOps request")
}

// GetProject returns the named project, or nil if it does not exist.
func (c *Client) GetProject(ctx context.Context, name string) (*TeamProject, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	coreClient, _, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	project, err := coreClient.GetProject(ctx, core.GetProjectArgs{ProjectId: &name})
	c.trace("GetProject", start, err)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", name, err)
	}
	if project == nil {
		return nil, nil
	}
	return fromProject(project), nil
}

// CreateRun creates a test run in project.
func (c *Client) CreateRun(ctx context.Context, run RunCreateModel, project string) (*TestRun, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, testClient, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	created, err := testClient.CreateTestRun(ctx, test.CreateTestRunArgs{
		TestRun: toRunCreateModel(run),
		Project: &project,
	})
	c.trace("CreateTestRun", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create test run: %w", err)
	}
	if created == nil || created.Id == nil || *created.Id == 0 {
		return nil, nil
	}
	return fromTestRun(created), nil
}

// GetTestPoints returns the test points of the given test cases across all plans of project.
func (c *Client) GetTestPoints(ctx context.Context, project string, caseIDs []int) ([]TestPoint, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, testClient, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	ids := append([]int(nil), caseIDs...)
	start := time.Now()
	result, err := testClient.GetPointsByQuery(ctx, test.GetPointsByQueryArgs{
		Query:   &test.TestPointsQuery{PointsFilter: &test.PointsFilter{TestcaseIds: &ids}},
		Project: &project,
	})
	c.trace("GetPointsByQuery", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query test points: %w", err)
	}
	if result == nil || result.Points == nil {
		return nil, nil
	}

	points := make([]TestPoint, 0, len(*result.Points))
	for i := range *result.Points {
		points = append(points, fromTestPoint(&(*result.Points)[i]))
	}
	return points, nil
}

// SubmitResults adds results to run runID and returns them with their remote ids.
func (c *Client) SubmitResults(ctx context.Context, results []TestCaseResult, project string, runID int) ([]TestCaseResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, testClient, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	in := make([]test.TestCaseResult, 0, len(results))
	for _, r := range results {
		in = append(in, toCaseResult(r))
	}

	start := time.Now()
	created, err := testClient.AddTestResultsToTestRun(ctx, test.AddTestResultsToTestRunArgs{
		Results: &in,
		Project: &project,
		RunId:   &runID,
	})
	c.trace("AddTestResultsToTestRun", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to add results to run %d: %w", runID, err)
	}
	if created == nil {
		return nil, nil
	}

	out := make([]TestCaseResult, 0, len(*created))
	for i := range *created {
		out = append(out, fromCaseResult(&(*created)[i]))
	}
	return out, nil
}

// UploadAttachment attaches a file to the result caseResultID of run runID.
func (c *Client) UploadAttachment(ctx context.Context, req TestAttachmentRequestModel, project string, runID, caseResultID int) (*TestAttachmentReference, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, testClient, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ref, err := testClient.CreateTestResultAttachment(ctx, test.CreateTestResultAttachmentArgs{
		AttachmentRequestModel: toAttachmentRequest(req),
		Project:                &project,
		RunId:                  &runID,
		TestCaseResultId:       &caseResultID,
	})
	c.trace("CreateTestResultAttachment", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment %s: %w", req.FileName, err)
	}
	out := &TestAttachmentReference{}
	if ref != nil {
		out.ID = deref(ref.Id)
		out.URL = deref(ref.Url)
	}
	return out, nil
}

// UpdateRunState moves run runID to state.
func (c *Client) UpdateRunState(ctx context.Context, project string, runID int, state string) (*TestRun, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, testClient, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	run, err := testClient.UpdateTestRun(ctx, test.UpdateTestRunArgs{
		RunUpdateModel: &test.RunUpdateModel{State: &state},
		Project:        &project,
		RunId:          &runID,
	})
	c.trace("UpdateTestRun", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	if run == nil {
		return &TestRun{ID: runID}, nil
	}
	return fromTestRun(run), nil
}
