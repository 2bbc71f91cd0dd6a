package reporter

import (
	"context"

	"github.com/adoreport/adoreport/azure"
)

// Service is the subset of the test-management API the pipeline needs.
// *azure.Client implements it.
type Service interface {
	// GetProject returns nil without error when the project does not exist.
	GetProject(ctx context.Context, name string) (*azure.TeamProject, error)
	// CreateRun returns nil without error when the service created nothing.
	CreateRun(ctx context.Context, run azure.RunCreateModel, project string) (*azure.TestRun, error)
	GetTestPoints(ctx context.Context, project string, caseIDs []int) ([]azure.TestPoint, error)
	SubmitResults(ctx context.Context, results []azure.TestCaseResult, project string, runID int) ([]azure.TestCaseResult, error)
	UploadAttachment(ctx context.Context, req azure.TestAttachmentRequestModel, project string, runID, caseResultID int) (*azure.TestAttachmentReference, error)
	UpdateRunState(ctx context.Context, project string, runID int, state string) (*azure.TestRun, error)
}

var _ Service = (*azure.Client)(nil)
