package reporter

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/adoreport/adoreport/azure"
)

// fakeService is an in-memory Service. Hooks override the default behavior.
type fakeService struct {
	mu sync.Mutex

	planID int
	runID  int

	getProject    func(name string) (*azure.TeamProject, error)
	createRun     func(run azure.RunCreateModel) (*azure.TestRun, error)
	getTestPoints func(caseIDs []int) ([]azure.TestPoint, error)
	submit        func(results []azure.TestCaseResult) ([]azure.TestCaseResult, error)
	upload        func(req azure.TestAttachmentRequestModel) (*azure.TestAttachmentReference, error)
	updateRun     func(state string) (*azure.TestRun, error)
	updateRunCtx  func(ctx context.Context)

	calls       []string
	runs        []azure.RunCreateModel
	submitted   []azure.TestCaseResult
	attachments []azure.TestAttachmentRequestModel
	nextResult  int
}

func newFakeService(planID int) *fakeService {
	return &fakeService{planID: planID, runID: 77, nextResult: 100000}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) Submitted() []azure.TestCaseResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]azure.TestCaseResult(nil), f.submitted...)
}

func (f *fakeService) Attachments() []azure.TestAttachmentRequestModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]azure.TestAttachmentRequestModel(nil), f.attachments...)
}

func (f *fakeService) GetProject(_ context.Context, name string) (*azure.TeamProject, error) {
	f.record("GetProject")
	if f.getProject != nil {
		return f.getProject(name)
	}
	return &azure.TeamProject{ID: "p", Name: name}, nil
}

func (f *fakeService) CreateRun(_ context.Context, run azure.RunCreateModel, _ string) (*azure.TestRun, error) {
	f.record("CreateRun")
	f.mu.Lock()
	f.runs = append(f.runs, run)
	f.mu.Unlock()
	if f.createRun != nil {
		return f.createRun(run)
	}
	return &azure.TestRun{ID: f.runID, Name: run.Name}, nil
}

func (f *fakeService) GetTestPoints(_ context.Context, _ string, caseIDs []int) ([]azure.TestPoint, error) {
	f.record("GetTestPoints")
	if f.getTestPoints != nil {
		return f.getTestPoints(caseIDs)
	}
	points := make([]azure.TestPoint, 0, len(caseIDs))
	for _, id := range caseIDs {
		points = append(points, azure.TestPoint{
			ID:       id * 10,
			TestPlan: &azure.ShallowReference{ID: strconv.Itoa(f.planID)},
			TestCase: &azure.ShallowReference{ID: strconv.Itoa(id)},
		})
	}
	return points, nil
}

func (f *fakeService) SubmitResults(_ context.Context, results []azure.TestCaseResult, _ string, _ int) ([]azure.TestCaseResult, error) {
	f.record("SubmitResults")
	if f.submit != nil {
		if out, err := f.submit(results); err != nil || out != nil {
			return out, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]azure.TestCaseResult, 0, len(results))
	for _, r := range results {
		f.submitted = append(f.submitted, r)
		r.ID = f.nextResult
		f.nextResult++
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeService) UploadAttachment(_ context.Context, req azure.TestAttachmentRequestModel, _ string, _, caseResultID int) (*azure.TestAttachmentReference, error) {
	f.record("UploadAttachment")
	if f.upload != nil {
		if ref, err := f.upload(req); err != nil || ref != nil {
			return ref, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachments = append(f.attachments, req)
	return &azure.TestAttachmentReference{ID: len(f.attachments), URL: "https://example/" + req.FileName}, nil
}

func (f *fakeService) UpdateRunState(ctx context.Context, _ string, runID int, state string) (*azure.TestRun, error) {
	f.record("UpdateRunState")
	if f.updateRunCtx != nil {
		f.updateRunCtx(ctx)
	}
	if f.updateRun != nil {
		return f.updateRun(state)
	}
	return &azure.TestRun{ID: runID, State: state}, nil
}

var errBoom = errors.New("boom")
