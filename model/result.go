package model

import "time"

// TestStatus is the local outcome of a single test attempt as reported by the host runner.
type TestStatus string

const (
	TestStatusPassed      TestStatus = "passed"
	TestStatusFailed      TestStatus = "failed"
	TestStatusTimedOut    TestStatus = "timedOut"
	TestStatusSkipped     TestStatus = "skipped"
	TestStatusInterrupted TestStatus = "interrupted"
)

// TestCase identifies a test as declared in the suite
type TestCase struct {
	// Stable identifier assigned by the host runner (may be empty)
	ID string `json:"id,omitempty"`
	// Display title, possibly carrying a case id tag such as "[1234]"
	Title string `json:"title"`
	// Source file the test is declared in
	File string `json:"file,omitempty"`
	// Line of the declaration
	Line int `json:"line,omitempty"`
	// Host runner project (browser/config) the test ran under
	ProjectName string `json:"projectName,omitempty"`
}

// TestResult is the outcome of one run of a TestCase
type TestResult struct {
	Status TestStatus `json:"status"`
	// Duration of the attempt
	Duration time.Duration `json:"duration"`
	// Retry index, 0 for the first attempt
	Retry int `json:"retry,omitempty"`
	// Error is set for failed and timed out attempts
	Error *TestError `json:"error,omitempty"`
	// Artifacts captured while the test ran
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TestError carries the failure message and stack, possibly with terminal color codes.
type TestError struct {
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Attachment is an artifact captured for a test result.
// Name is the artifact kind (screenshot, video, trace, ...).
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Path        string `json:"path,omitempty"`
}
