package azure

import (
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/test"
)

// Run states and result outcomes understood by the Test API.
const (
	RunStateCompleted = "Completed"

	OutcomePassed = "Passed"
	OutcomeFailed = "Failed"
	OutcomePaused = "Paused"

	ResultStateCompleted = "Completed"

	AttachmentTypeGeneral = "GeneralAttachment"
)

// ShallowReference points at another resource by id.
type ShallowReference struct {
	ID   string
	Name string
	URL  string
}

// TeamProject is the subset of a project returned by the Core API that is used here.
type TeamProject struct {
	ID    string
	Name  string
	State string
}

// RunCreateModel is the payload of a run creation.
type RunCreateModel struct {
	Name             string
	Automated        bool
	ConfigurationIDs []int
	Plan             *ShallowReference
}

type TestRun struct {
	ID           int
	Name         string
	State        string
	URL          string
	WebAccessURL string
}

type TestPoint struct {
	ID       int
	TestPlan *ShallowReference
	TestCase *ShallowReference
}

type TestCaseResult struct {
	ID            int
	TestCase      *ShallowReference
	TestPoint     *ShallowReference
	TestRun       *ShallowReference
	TestCaseTitle string
	Outcome       string
	State         string
	DurationInMs  float64
	ErrorMessage  string
	StackTrace    string
	URL           string
}

type TestAttachmentRequestModel struct {
	AttachmentType string
	Comment        string
	FileName       string
	// Stream is the base64 encoded file content
	Stream string
}

type TestAttachmentReference struct {
	ID  int
	URL string
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ptr returns nil for the zero value so empty fields are left out of requests.
func ptr[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func toShallow(r *ShallowReference) *test.ShallowReference {
	if r == nil {
		return nil
	}
	return &test.ShallowReference{Id: ptr(r.ID), Name: ptr(r.Name), Url: ptr(r.URL)}
}

func fromShallow(r *test.ShallowReference) *ShallowReference {
	if r == nil {
		return nil
	}
	return &ShallowReference{ID: deref(r.Id), Name: deref(r.Name), URL: deref(r.Url)}
}

func fromProject(p *core.TeamProject) *TeamProject {
	out := &TeamProject{Name: deref(p.Name)}
	if p.Id != nil {
		out.ID = p.Id.String()
	}
	if p.State != nil {
		out.State = string(*p.State)
	}
	return out
}

func toRunCreateModel(run RunCreateModel) *test.RunCreateModel {
	out := &test.RunCreateModel{
		Name:      &run.Name,
		Automated: &run.Automated,
		Plan:      toShallow(run.Plan),
	}
	if len(run.ConfigurationIDs) > 0 {
		ids := append([]int(nil), run.ConfigurationIDs...)
		out.ConfigurationIds = &ids
	}
	return out
}

func fromTestRun(run *test.TestRun) *TestRun {
	return &TestRun{
		ID:           deref(run.Id),
		Name:         deref(run.Name),
		State:        deref(run.State),
		URL:          deref(run.Url),
		WebAccessURL: deref(run.WebAccessUrl),
	}
}

func fromTestPoint(p *test.TestPoint) TestPoint {
	out := TestPoint{
		ID:       deref(p.Id),
		TestPlan: fromShallow(p.TestPlan),
	}
	if p.TestCase != nil {
		out.TestCase = &ShallowReference{
			ID:   deref(p.TestCase.Id),
			Name: deref(p.TestCase.Name),
			URL:  deref(p.TestCase.Url),
		}
	}
	return out
}

func toCaseResult(r TestCaseResult) test.TestCaseResult {
	out := test.TestCaseResult{
		Id:            ptr(r.ID),
		TestCase:      toShallow(r.TestCase),
		TestPoint:     toShallow(r.TestPoint),
		TestRun:       toShallow(r.TestRun),
		TestCaseTitle: ptr(r.TestCaseTitle),
		Outcome:       ptr(r.Outcome),
		State:         ptr(r.State),
		ErrorMessage:  ptr(r.ErrorMessage),
		StackTrace:    ptr(r.StackTrace),
	}
	if r.DurationInMs > 0 {
		d := r.DurationInMs
		out.DurationInMs = &d
	}
	return out
}

func fromCaseResult(r *test.TestCaseResult) TestCaseResult {
	return TestCaseResult{
		ID:            deref(r.Id),
		TestCase:      fromShallow(r.TestCase),
		TestPoint:     fromShallow(r.TestPoint),
		TestRun:       fromShallow(r.TestRun),
		TestCaseTitle: deref(r.TestCaseTitle),
		Outcome:       deref(r.Outcome),
		State:         deref(r.State),
		DurationInMs:  deref(r.DurationInMs),
		ErrorMessage:  deref(r.ErrorMessage),
		StackTrace:    deref(r.StackTrace),
		URL:           deref(r.Url),
	}
}

func toAttachmentRequest(req TestAttachmentRequestModel) *test.TestAttachmentRequestModel {
	return &test.TestAttachmentRequestModel{
		AttachmentType: ptr(req.AttachmentType),
		Comment:        ptr(req.Comment),
		FileName:       &req.FileName,
		Stream:         &req.Stream,
	}
}

